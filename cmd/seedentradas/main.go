// Command seedentradas fills the logbook with demo visits: five per month for
// the last twelve months, each with its salida.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/andres1jh8/Registro-Back/internal/config"
	"github.com/andres1jh8/Registro-Back/internal/infra"
	"github.com/andres1jh8/Registro-Back/internal/model"
	"github.com/andres1jh8/Registro-Back/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	empresas = []string{"Contraloría", "SAT", "BANRURAL", "Claro", "Tigo"}
	motivos  = []string{"Reunión", "Entrega", "Visita", "Capacitación", "Supervisión"}
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	months := flag.Int("months", 12, "meses hacia atrás")
	perMonth := flag.Int("per-month", 5, "visitas por mes")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx := context.Background()
	entradas := repository.NewEntradaRepository(db)
	salidas := repository.NewSalidaRepository(db)
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	now := time.Now().In(cfg.Location())
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	total := 0
	for m := 0; m < *months; m++ {
		mes := first.AddDate(0, -m, 0)
		for i := 0; i < *perMonth; i++ {
			dia := 1 + rnd.Intn(28)
			fecha := mes.AddDate(0, 0, dia-1)
			if fecha.After(now) {
				fecha = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			}
			h := 8 + rnd.Intn(8)
			e := &model.Entrada{
				Fecha:       fecha,
				HoraEntrada: fmt.Sprintf("%02d:%02d", h, rnd.Intn(60)),
				Nombre:      fmt.Sprintf("Visitante Demo %d", total+1),
				DPI:         fmt.Sprintf("%013d", 1000000000000+rnd.Int63n(8999999999999)),
				Motivo:      motivos[rnd.Intn(len(motivos))],
				Empresa:     empresas[rnd.Intn(len(empresas))],
				Firma:       infra.LocalURLPrefix + "firmas/demo.png",
			}
			if err := entradas.Create(ctx, e); err != nil {
				log.Fatal().Err(err).Msg("insert entrada")
			}
			s := &model.Salida{EntradaID: e.ID, HoraSalida: fmt.Sprintf("%02d:%02d", h+1, rnd.Intn(60))}
			if err := salidas.Create(ctx, s); err != nil {
				log.Fatal().Err(err).Msg("insert salida")
			}
			total++
		}
	}
	log.Info().Int("entradas", total).Msg("datos de demo insertados")
}
