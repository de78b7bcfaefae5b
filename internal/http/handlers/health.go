package handlers

import (
	"net/http"

	"github.com/wolfman30/vigilante/internal/persona"
)

// Health is the liveness probe.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Root returns the operational banner.
func Root(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "Vigilante honeypot operational",
			"mode":   env,
		})
	}
}

type personaView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age,omitempty"`
}

// Personas lists the registered personas, default first.
func Personas(registry *persona.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		def := registry.Default()
		out := []personaView{{ID: def.ID, Name: def.Name, Age: def.Age}}
		for _, id := range registry.IDs() {
			if id == def.ID {
				continue
			}
			p := registry.Get(id)
			out = append(out, personaView{ID: p.ID, Name: p.Name, Age: p.Age})
		}
		writeJSON(w, http.StatusOK, map[string]any{"default": def.ID, "personas": out})
	}
}
