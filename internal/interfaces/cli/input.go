package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
)

// loadParams lee los parámetros del contribuyente. .json se decodifica como JSON; el resto como YAML.
func loadParams(path string) (*entity.ContributorParams, error) {
	if path == "" {
		return nil, fmt.Errorf("--params es obligatorio")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	var p entity.ContributorParams
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(raw, &p)
	} else {
		err = yaml.Unmarshal(raw, &p)
	}
	if err != nil {
		return nil, fmt.Errorf("params %s: %w", path, err)
	}
	return &p, nil
}

// loadDocument lee parámetros y datos del documento.
func loadDocument(cmd *cobra.Command, paramsFile, dataFile string) (*entity.ContributorParams, *entity.DocumentData, error) {
	params, err := loadParams(paramsFile)
	if err != nil {
		return nil, nil, err
	}
	raw, err := readInput(cmd, "data", dataFile)
	if err != nil {
		return nil, nil, err
	}
	var data entity.DocumentData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, nil, fmt.Errorf("data: %w", err)
	}
	return params, &data, nil
}

// readInput lee un archivo; "-" lee stdin.
func readInput(cmd *cobra.Command, flag, path string) ([]byte, error) {
	switch path {
	case "":
		return nil, fmt.Errorf("--%s es obligatorio", flag)
	case "-":
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", flag, err)
	}
	return raw, nil
}

// writeOutput escribe en el archivo indicado o en stdout.
func writeOutput(cmd *cobra.Command, path, text string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(cmd, path, string(b)+"\n")
}
