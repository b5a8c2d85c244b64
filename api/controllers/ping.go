package controllers

import (
	"net/http"

	"github.com/latsops/pos-backend/api/responses"
	pkgAuth "github.com/latsops/pos-backend/pkg/auth"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if op, ok := pkgAuth.OperatorFromContext(r.Context()); ok {
			payload["operator_id"] = op.ID.String()
		}
		responses.WriteSuccess(w, payload)
	}
}
