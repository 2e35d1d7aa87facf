package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type rootOptions struct {
	output   string
	timezone string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "reportctl",
		Short: "Reportes del back-office de pólizas",
		Long: `reportctl calcula KPIs, distribuciones Top-N y series temporales sobre las
entradas de negocio del back-office.

Examples:
  reportctl overview --file entries.json --start 2025-11-01 --end 2025-11-30
  reportctl overview --api https://backoffice.example.in/api --email rm@example.in --output yaml`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "Formato de salida: json | yaml")
	cmd.PersistentFlags().StringVar(&opts.timezone, "timezone", "Asia/Kolkata", "Zona horaria para fechas y periodos")

	cmd.AddCommand(newOverviewCmd(opts))
	return cmd
}

func (o *rootOptions) location() (*time.Location, error) {
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, fmt.Errorf("zona horaria %q: %w", o.timezone, err)
	}
	return loc, nil
}

// render escribe v en el formato pedido. Para YAML se pasa antes por JSON para
// respetar los nombres de campo de la API.
func (o *rootOptions) render(w io.Writer, v any) error {
	switch o.output {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	}
	return fmt.Errorf("formato de salida %q no soportado (json|yaml)", o.output)
}
