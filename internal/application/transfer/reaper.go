package transfer

import (
	"context"
	"errors"
	"time"

	appinv "github.com/jhoicas/tradenest-api/internal/application/inventory"
	"github.com/jhoicas/tradenest-api/internal/domain"
	"github.com/jhoicas/tradenest-api/internal/domain/repository"
	"github.com/jhoicas/tradenest-api/pkg/logger"
)

const expiredReason = "retención vencida"

// ReaperConfig parámetros del limpiador de retenciones vencidas.
type ReaperConfig struct {
	Interval time.Duration
	Batch    int
	Now      appinv.Clock
}

// ReapResult resumen de una pasada del reaper.
type ReapResult struct {
	ExpiredTransfers int
	ReleasedHolds    int
	Failed           int
}

// HoldReaper libera el stock apartado por solicitudes abandonadas. Los traslados pending o
// approved con retenciones vencidas pasan a rejected; las retenciones sueltas se liberan.
type HoldReaper struct {
	holds     repository.HoldRepository
	transfers *UseCase
	ledger    *appinv.Ledger
	interval  time.Duration
	batch     int
	now       appinv.Clock
	log       *logger.Logger
}

// NewHoldReaper construye el reaper.
func NewHoldReaper(
	holds repository.HoldRepository,
	transfers *UseCase,
	ledger *appinv.Ledger,
	cfg ReaperConfig,
	log *logger.Logger,
) *HoldReaper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 100
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &HoldReaper{
		holds:     holds,
		transfers: transfers,
		ledger:    ledger,
		interval:  cfg.Interval,
		batch:     cfg.Batch,
		now:       cfg.Now,
		log:       log,
	}
}

// Start ejecuta pasadas periódicas hasta que ctx se cancele.
func (r *HoldReaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info().Dur("interval", r.interval).Int("batch", r.batch).Msg("reaper de retenciones iniciado")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("reaper de retenciones detenido")
			return
		case <-ticker.C:
			res, err := r.RunOnce(ctx)
			if err != nil {
				r.log.Error().Err(err).Msg("falló la pasada del reaper")
				continue
			}
			if res.ExpiredTransfers > 0 || res.ReleasedHolds > 0 || res.Failed > 0 {
				r.log.Info().Int("expired_transfers", res.ExpiredTransfers).
					Int("released_holds", res.ReleasedHolds).Int("failed", res.Failed).
					Msg("pasada del reaper completada")
			}
		}
	}
}

// RunOnce procesa un lote de retenciones vencidas.
func (r *HoldReaper) RunOnce(ctx context.Context) (ReapResult, error) {
	var res ReapResult
	expired, err := r.holds.ListExpired(ctx, r.now(), r.batch)
	if err != nil {
		return res, err
	}
	seen := make(map[string]struct{})
	for _, h := range expired {
		if h.TransferID == "" {
			if err := r.ledger.Release(ctx, h.ID, SystemActor); err != nil {
				res.Failed++
				r.log.Error().Err(err).Str("hold_id", h.ID).Msg("no se pudo liberar la retención vencida")
				continue
			}
			res.ReleasedHolds++
			continue
		}
		if _, done := seen[h.TransferID]; done {
			continue
		}
		seen[h.TransferID] = struct{}{}

		_, err := r.transfers.Expire(ctx, h.TransferID, expiredReason)
		switch {
		case err == nil:
			res.ExpiredTransfers++
		case errors.Is(err, domain.ErrInvalidStateTransition):
			// El traslado ya avanzó o terminó; la retención quedó huérfana.
			if err := r.ledger.Release(ctx, h.ID, SystemActor); err != nil {
				res.Failed++
				r.log.Error().Err(err).Str("hold_id", h.ID).Msg("no se pudo liberar la retención huérfana")
				continue
			}
			res.ReleasedHolds++
		default:
			res.Failed++
			r.log.Error().Err(err).Str("transfer_id", h.TransferID).Msg("no se pudo expirar el traslado")
		}
	}
	return res, nil
}
