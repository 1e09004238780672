package sifen

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"github.com/jhoicas/sifen-api/pkg/sifen"
)

const (
	xmlDeclaration = `version="1.0" encoding="UTF-8"`
	indentSpaces   = 2
)

// newRoot crea el elemento raíz con los tres atributos fijos de namespace y schemaLocation.
func newRoot(tag, schemaFile string) *etree.Element {
	root := etree.NewElement(tag)
	root.CreateAttr("xmlns", sifen.Namespace)
	root.CreateAttr("xmlns:xsi", sifen.NamespaceXSI)
	root.CreateAttr("xsi:schemaLocation", sifen.Namespace+" "+schemaFile)
	return root
}

func schemaFile(prefix string, version int) string {
	return fmt.Sprintf("%s_v%d.xsd", prefix, version)
}

// render serializa el árbol, lo vuelve a leer y lo re-indenta sin preservar espacios,
// con declaración XML UTF-8. La salida es determinista para el mismo árbol.
func render(root *etree.Element) (string, error) {
	raw := etree.NewDocument()
	raw.SetRoot(root)
	s, err := raw.WriteToString()
	if err != nil {
		return "", fmt.Errorf("sifen: serializar xml: %w", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return "", fmt.Errorf("sifen: releer xml: %w", err)
	}
	doc.InsertChildAt(0, etree.NewProcInst("xml", xmlDeclaration))
	doc.Indent(indentSpaces)
	return doc.WriteToString()
}

// ── helpers de escritura ─────────────────────────────────────────────────────

func addText(parent *etree.Element, tag, text string) *etree.Element {
	e := parent.CreateElement(tag)
	e.SetText(text)
	return e
}

// addOptText agrega el elemento solo si el texto no es vacío.
func addOptText(parent *etree.Element, tag, text string) {
	if text != "" {
		addText(parent, tag, text)
	}
}

// addClean agrega texto libre limpio y truncado; el escape lo hace etree al escribir.
func addClean(parent *etree.Element, tag, text string, maxLength int) {
	addText(parent, tag, sifen.CleanText(text, maxLength))
}

func addOptClean(parent *etree.Element, tag, text string, maxLength int) {
	if text != "" {
		addClean(parent, tag, text, maxLength)
	}
}

func addInt(parent *etree.Element, tag string, v int) {
	addText(parent, tag, strconv.Itoa(v))
}

func addOptInt(parent *etree.Element, tag string, v int) {
	if v != 0 {
		addInt(parent, tag, v)
	}
}
