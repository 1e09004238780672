// Package cli: comando sifenctl para generar CDC, XML, eventos y QR desde archivos locales,
// sin base de datos ni servidor HTTP.
package cli

import (
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/jhoicas/sifen-api/internal/application/billing"
	infra "github.com/jhoicas/sifen-api/internal/infrastructure/sifen"
	"github.com/jhoicas/sifen-api/pkg/logger"
)

// Version se sobrescribe al compilar: -ldflags "-X github.com/jhoicas/sifen-api/internal/interfaces/cli.Version=1.0.0".
var Version = "dev"

// globalOptions flags persistentes compartidos por todos los subcomandos.
type globalOptions struct {
	paramsFile string
	output     string
	logLevel   string
	test       bool

	// QR
	cscID   string
	csc     string
	baseURL string

	clock clockwork.Clock
	log   *logger.Logger
}

// NewRootCmd arma el árbol de comandos. clock nil => reloj real.
func NewRootCmd(clock clockwork.Clock) *cobra.Command {
	o := &globalOptions{clock: clock}

	root := &cobra.Command{
		Use:   "sifenctl",
		Short: "Motor SIFEN (Paraguay) por línea de comandos",
		Long: `sifenctl genera el CDC, el XML rDE, los eventos rEvento y el payload QR
de documentos electrónicos SIFEN a partir de archivos locales.

Los parámetros del contribuyente se leen de un archivo YAML (o JSON) con --params;
los datos del documento y del evento, de archivos JSON ("-" lee stdin).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			o.log = logger.New(logger.Config{
				Env:    "development",
				Level:  o.logLevel,
				Output: cmd.ErrOrStderr(),
			})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.paramsFile, "params", "p", "", "archivo YAML o JSON con los parámetros del contribuyente")
	pf.StringVarP(&o.output, "output", "o", "", "archivo de salida (por defecto stdout)")
	pf.StringVar(&o.logLevel, "log-level", "warn", "nivel de log: trace, debug, info, warn, error")
	pf.BoolVar(&o.test, "test", false, "ambiente de pruebas: reemplaza la razón social del emisor")

	root.AddCommand(
		newCDCCmd(o),
		newXMLCmd(o),
		newValidateCmd(o),
		newEventCmd(o),
		newQRCmd(o),
		newVersionCmd(),
	)
	return root
}

// Execute punto de entrada del binario.
func Execute() {
	if err := NewRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}

// service construye el motor con las opciones de la línea de comandos.
func (o *globalOptions) service() *billing.DocumentService {
	opts := infra.DefaultOptions()
	opts.Test = o.test
	return billing.NewDocumentService(billing.Deps{
		QR: infra.NewQRBuilderService(infra.QRConfig{
			CSCID:   o.cscID,
			CSC:     o.csc,
			BaseURL: o.baseURL,
		}),
		Logger:  o.log,
		Clock:   o.clock,
		Options: opts,
	})
}
