package handlers

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wolfman30/vigilante/internal/persona"
	"github.com/wolfman30/vigilante/pkg/logging"
)

const (
	voiceIdentity = "scammer_identity_frontend"
	voiceName     = "Scammer Caller"
	voiceTokenTTL = 6 * time.Hour
)

// VoiceConfig holds the LiveKit-compatible room credentials.
type VoiceConfig struct {
	APIKey    string
	APISecret string
	URL       string
	Room      string
}

// VideoGrant mirrors LiveKit's grant claim.
type VideoGrant struct {
	Room                 string `json:"room,omitempty"`
	RoomJoin             bool   `json:"roomJoin,omitempty"`
	CanPublish           *bool  `json:"canPublish,omitempty"`
	CanSubscribe         *bool  `json:"canSubscribe,omitempty"`
	CanUpdateOwnMetadata bool   `json:"canUpdateOwnMetadata,omitempty"`
}

// VoiceClaims is the access token body.
type VoiceClaims struct {
	jwt.RegisteredClaims
	Name     string     `json:"name,omitempty"`
	Video    VideoGrant `json:"video"`
	Metadata string     `json:"metadata,omitempty"`
}

// TokenHandler mints room tokens for the voice frontend. The persona id
// travels as participant metadata.
type TokenHandler struct {
	cfg      VoiceConfig
	personas *persona.Registry
	logger   *logging.Logger
	now      func() time.Time
}

func NewTokenHandler(cfg VoiceConfig, personas *persona.Registry, logger *logging.Logger) *TokenHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Room == "" {
		cfg.Room = "test-room"
	}
	return &TokenHandler{cfg: cfg, personas: personas, logger: logger, now: time.Now}
}

func (h *TokenHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.cfg.APIKey == "" || h.cfg.APISecret == "" {
		jsonError(w, "voice credentials not configured", http.StatusServiceUnavailable)
		return
	}

	personaID := r.URL.Query().Get("persona")
	if h.personas != nil {
		personaID = h.personas.Get(personaID).ID
	}

	now := h.now()
	yes := true
	claims := VoiceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    h.cfg.APIKey,
			Subject:   voiceIdentity,
			ID:        uuid.NewString(),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(voiceTokenTTL)),
		},
		Name: voiceName,
		Video: VideoGrant{
			Room:                 h.cfg.Room,
			RoomJoin:             true,
			CanPublish:           &yes,
			CanSubscribe:         &yes,
			CanUpdateOwnMetadata: true,
		},
		Metadata: personaID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.APISecret))
	if err != nil {
		h.logger.Error("voice token signing failed", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token":   signed,
		"url":     h.cfg.URL,
		"persona": personaID,
	})
}
