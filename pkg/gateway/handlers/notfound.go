package handlers

import (
	"net/http"

	"github.com/omochi-ai/realtime-gateway/pkg/gateway/apierror"
)

type NotFoundHandler struct{}

func (h NotFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	apierror.Write(w, http.StatusNotFound, apierror.NotFound(r.URL.Path))
}
