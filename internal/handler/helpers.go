package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bistro-app/api/internal/database"
	"github.com/bistro-app/api/internal/events"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	log "github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("encode JSON response")
	}
}

func writeInternalError(w http.ResponseWriter, err error, action string) {
	log.WithError(err).Error(action)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// publish delivers e after the request has already succeeded. Failures are
// logged and never change the response.
func publish(ctx context.Context, pub events.Publisher, eventType string, payload any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, events.New(eventType, payload)); err != nil {
		log.WithError(err).WithField("event", eventType).Warn("publish event")
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// numericToString always formats with 2 decimal places for consistent money
// representation.
func numericToString(n pgtype.Numeric) string {
	return database.NumericToDecimal(n).StringFixed(2)
}

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
