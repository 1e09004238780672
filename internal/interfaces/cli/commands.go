package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/sifen-api/internal/application/dto"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

func newCDCCmd(o *globalOptions) *cobra.Command {
	var dataFile string
	cmd := &cobra.Command{
		Use:   "cdc",
		Short: "Genera el CDC de 44 dígitos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, data, err := loadDocument(cmd, o.paramsFile, dataFile)
			if err != nil {
				return err
			}
			cdc, err := o.service().GenerateCDC(params, data)
			if err != nil {
				return err
			}
			return writeOutput(cmd, o.output, cdc+"\n")
		},
	}
	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "archivo JSON con los datos del documento")
	return cmd
}

func newXMLCmd(o *globalOptions) *cobra.Command {
	var dataFile string
	cmd := &cobra.Command{
		Use:   "xml",
		Short: "Genera el XML rDE (sin firmar)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, data, err := loadDocument(cmd, o.paramsFile, dataFile)
			if err != nil {
				return err
			}
			res, err := o.service().GenerateXML(params, data, nil)
			if err != nil {
				return err
			}
			o.log.Info().
				Str("cdc", res.CDC).
				Str("total", res.Totals.General.String()).
				Str("iva", res.Totals.IVA.String()).
				Msg("XML generado")
			return writeOutput(cmd, o.output, res.XML)
		},
	}
	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "archivo JSON con los datos del documento")
	return cmd
}

func newValidateCmd(o *globalOptions) *cobra.Command {
	var dataFile string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Valida parámetros y datos sin generar el XML",
		Long:  "Imprime {success, errors}. Termina con error si hay al menos un error de validación.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, data, err := loadDocument(cmd, o.paramsFile, dataFile)
			if err != nil {
				return err
			}
			res := o.service().ValidateData(params, data)
			if err := writeJSON(cmd, o.output, res); err != nil {
				return err
			}
			if !res.Valid {
				return fmt.Errorf("%d error(es) de validación", len(res.Errors))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "archivo JSON con los datos del documento")
	return cmd
}

func newEventCmd(o *globalOptions) *cobra.Command {
	var (
		eventFile string
		tipo      string
		id        string
	)
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Genera el XML rEvento",
		Long: "Tipos: " + strings.Join(eventTypeNames(), ", ") + `.
El archivo --event contiene los datos propios del tipo (cdc, motivo, rango...).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := loadParams(o.paramsFile)
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, "event", eventFile)
			if err != nil {
				return err
			}
			req := dto.EventRequest{ID: id, Tipo: tipo, Evento: raw}
			ev, err := req.Decode()
			if err != nil {
				return err
			}
			out, err := o.service().GenerateEventXML(id, params, ev, nil)
			if err != nil {
				return err
			}
			return writeOutput(cmd, o.output, out)
		},
	}
	cmd.Flags().StringVarP(&tipo, "type", "t", "", "tipo de evento")
	cmd.Flags().StringVar(&id, "id", "1", "identificador del evento (atributo Id de rEve)")
	cmd.Flags().StringVarP(&eventFile, "event", "e", "", "archivo JSON con los datos del evento")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newQRCmd(o *globalOptions) *cobra.Command {
	var (
		cdc, fechaText, rucReceptor string
		total, iva, xmlFile         string
	)
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Arma el payload y la URL del QR de un documento emitido",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fecha, err := sifen.ParseDateTime(fechaText)
			if err != nil {
				return sifen.WithField(err, "fecha")
			}
			doc := &entity.Document{CDC: cdc, Fecha: fecha, RucReceptor: rucReceptor}
			if doc.Total, err = sifen.ParseAmount(total); err != nil {
				return sifen.WithField(err, "total")
			}
			if doc.Impuesto, err = sifen.ParseAmount(iva); err != nil {
				return sifen.WithField(err, "iva")
			}
			if xmlFile != "" {
				raw, err := readInput(cmd, "xml", xmlFile)
				if err != nil {
					return err
				}
				doc.XML = string(raw)
			}

			svc := o.service()
			payload, ok := svc.BuildQRPayload(doc)
			if !ok {
				return errors.New("qr: cdc y ruc-receptor son obligatorios")
			}
			return writeJSON(cmd, o.output, dto.QRResponse{Payload: payload, URL: svc.QRURL(payload)})
		},
	}
	f := cmd.Flags()
	f.StringVar(&cdc, "cdc", "", "CDC del documento")
	f.StringVar(&fechaText, "fecha", "", "fecha de emisión (AAAA-MM-DD o AAAA-MM-DDThh:mm:ss)")
	f.StringVar(&rucReceptor, "ruc-receptor", "", "RUC o documento del receptor")
	f.StringVar(&total, "total", "0", "total general de la operación")
	f.StringVar(&iva, "iva", "0", "total de IVA")
	f.StringVar(&xmlFile, "xml", "", "XML del documento (firmado o no) para DigestValue y cItems")
	f.StringVar(&o.cscID, "csc-id", "", "IdCSC (por defecto 0001)")
	f.StringVar(&o.csc, "csc", "", "secreto CSC; agrega cHashQR a la URL")
	f.StringVar(&o.baseURL, "base-url", "", "URL de consulta del ambiente")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Muestra la versión",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sifenctl %s (formato SIFEN v%d)\n", Version, sifen.SchemaVersion)
		},
	}
}

func eventTypeNames() []string {
	types := entity.EventTypes()
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, t.String())
	}
	return out
}
