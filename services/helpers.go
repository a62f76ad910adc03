package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"

	"github.com/Dosada05/sport-events/models"
)

// --- Общие хелперы ---

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}

// withTx выполняет fn в транзакции: commit при успехе, rollback при ошибке или панике.
func withTx(ctx context.Context, db *sql.DB, logger *slog.Logger, fn func(tx *sql.Tx) error) (txErr error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	txErr = fn(tx)
	return txErr
}

func isValidParticipantTransition(current, next models.ParticipantStatus) bool {
	allowedTransitions := map[models.ParticipantStatus][]models.ParticipantStatus{
		models.ParticipantPending:   {models.ParticipantConfirmed, models.ParticipantRejected},
		models.ParticipantConfirmed: {models.ParticipantCancelled},
		models.ParticipantCancelled: {},
		models.ParticipantRejected:  {},
	}
	for _, allowedNext := range allowedTransitions[current] {
		if next == allowedNext {
			return true
		}
	}
	return false
}
