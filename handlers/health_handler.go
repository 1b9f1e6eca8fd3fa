package handlers

import "net/http"

func Health(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
