package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/polizas-reportes/internal/application/dto"
	"github.com/jhoicas/polizas-reportes/internal/application/reports"
	"github.com/jhoicas/polizas-reportes/internal/application/session"
	"github.com/jhoicas/polizas-reportes/internal/application/snapshot"
	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
	"github.com/jhoicas/polizas-reportes/internal/domain/repository"
	"github.com/jhoicas/polizas-reportes/internal/infrastructure/backend"
)

// passwordEnv evita pasar la contraseña por la línea de comandos.
const passwordEnv = "REPORTCTL_PASSWORD"

type overviewOptions struct {
	*rootOptions

	file           string
	rmsFile        string
	associatesFile string

	api      string
	email    string
	password string
	timeout  time.Duration

	start    string
	end      string
	timeline string
	metric   string
	top      int
	buckets  int
	only     string
}

func newOverviewCmd(root *rootOptions) *cobra.Command {
	opts := &overviewOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "KPIs, distribuciones y serie temporal del periodo",
		Long: `Calcula el overview del dashboard.

Con --file se leen volcados JSON del backend (array directo o {"data": [...]}) y
se reporta toda la cartera. Con --api se inicia sesión y se reporta la cartera
visible para ese usuario; la contraseña se toma de ` + passwordEnv + ` si no se
pasa --password.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOverview(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.file, "file", "", "Volcado JSON de /business-entries")
	f.StringVar(&opts.rmsFile, "rms-file", "", "Volcado JSON de /rms (opcional)")
	f.StringVar(&opts.associatesFile, "associates-file", "", "Volcado JSON de /associates (opcional)")
	f.StringVar(&opts.api, "api", "", "URL base del backend, p. ej. https://host/api")
	f.StringVar(&opts.email, "email", "", "Usuario para --api")
	f.StringVar(&opts.password, "password", "", "Contraseña para --api (mejor vía "+passwordEnv+")")
	f.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Timeout de cada petición al backend")
	f.StringVar(&opts.start, "start", "", "Inicio del periodo (YYYY-MM-DD)")
	f.StringVar(&opts.end, "end", "", "Fin del periodo inclusivo (YYYY-MM-DD)")
	f.StringVar(&opts.timeline, "timeline", "month", "day | week | month")
	f.StringVar(&opts.metric, "metric", "revenue", "revenue | premium")
	f.IntVar(&opts.top, "top", 0, "Grupos antes de Others (default 5)")
	f.IntVar(&opts.buckets, "buckets", 0, "Periodos más recientes a mostrar (0 = todos)")
	f.StringVar(&opts.only, "only", "", "Solo una sección: totals | distributions | timeline")
	cmd.MarkFlagsMutuallyExclusive("file", "api")
	return cmd
}

func runOverview(cmd *cobra.Command, opts *overviewOptions) error {
	loc, err := opts.location()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		source    repository.EntrySource
		principal reports.Principal
	)
	store := snapshot.NewStore(0)

	switch {
	case opts.file != "":
		source = &backend.FileSource{
			EntriesPath:    opts.file,
			RMsPath:        opts.rmsFile,
			AssociatesPath: opts.associatesFile,
		}
		principal = reports.Principal{UserID: "local", Role: entity.RoleAdmin}
	case opts.api != "":
		client := backend.NewClient(opts.api, opts.timeout)
		password := opts.password
		if password == "" {
			password = os.Getenv(passwordEnv)
		}
		sessions := session.NewManager(client)
		sessions.OnSignOut(func(session.Session) { store.Reset() })
		s, err := sessions.SignIn(ctx, opts.email, password)
		if err != nil {
			return err
		}
		defer sessions.SignOut()

		source = client
		principal = reports.Principal{UserID: s.UserID, Role: s.Role, Name: s.Name, Token: s.Token}
	default:
		return errors.New("indique --file o --api")
	}

	uc := reports.NewOverviewUseCase(source, store, nil, reports.Options{Location: loc})
	ov, err := uc.GetOverview(ctx, principal, dto.OverviewRequest{
		StartDate: opts.start,
		EndDate:   opts.end,
		Timeline:  opts.timeline,
		Metric:    opts.metric,
		TopN:      opts.top,
		Buckets:   opts.buckets,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch opts.only {
	case "":
		return opts.render(out, ov)
	case "totals":
		return opts.render(out, ov.Totals)
	case "distributions":
		return opts.render(out, ov.Distributions)
	case "timeline":
		return opts.render(out, ov.Timeline)
	}
	return fmt.Errorf("sección %q no soportada (totals|distributions|timeline)", opts.only)
}
