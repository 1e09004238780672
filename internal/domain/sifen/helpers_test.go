package sifen_test

import (
	"time"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

// testNow "ahora" fijo de los tests de validación.
var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func validParams() *entity.ContributorParams {
	return &entity.ContributorParams{
		RUC:               "80069563-1",
		RazonSocial:       "Empresa de Prueba S.A.",
		NombreFantasia:    "Prueba",
		TimbradoNumero:    "12558946",
		TimbradoFecha:     "2023-08-25",
		TipoContribuyente: sifen.ContribuyenteJuridica,
		TipoRegimen:       8,
		Establecimientos: []entity.Establishment{{
			Codigo:                  "001",
			Direccion:               "Av. Mcal. López",
			NumeroCasa:              "1234",
			Departamento:            1,
			DepartamentoDescripcion: "CAPITAL",
			Ciudad:                  1,
			CiudadDescripcion:       "ASUNCION (DISTRITO)",
		}},
		ActividadesEconomicas: []entity.EconomicActivity{{Codigo: "62010", Descripcion: "Actividades de programación informática"}},
	}
}

func validData() *entity.DocumentData {
	return &entity.DocumentData{
		TipoDocumento:            sifen.TipoFactura,
		Establecimiento:          "1",
		Punto:                    "1",
		Numero:                   "6",
		Fecha:                    "2024-03-09T10:00:00",
		CodigoSeguridadAleatorio: "759571469",
		Cliente: &entity.Client{
			Contribuyente: true,
			RUC:           "80000000-5",
			RazonSocial:   "Cliente S.R.L.",
		},
		Items: []entity.Item{
			{
				Codigo:         "A-1",
				Descripcion:    "Servicio de consultoría",
				Cantidad:       "2",
				PrecioUnitario: "55000",
				IVA:            &entity.ItemVAT{Tipo: sifen.IVAGravado, Porcentaje: "10", Base: "100000"},
			},
		},
	}
}
