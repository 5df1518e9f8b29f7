package ws

import (
	"encoding/json"

	"luna/internal/domain"
	"luna/internal/service"
)

// Envelope is every message on the socket, in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// client → server
type CreateLobbyPayload struct {
	Name string `json:"name"`
}

type LobbyPayload struct {
	LobbyID string `json:"lobby_id"`
}

type CategoryPayload struct {
	LobbyID  string `json:"lobby_id"`
	Category string `json:"category"` // truth | dare
}

type RespondPayload struct {
	LobbyID string `json:"lobby_id"`
	Text    string `json:"text"`
}

type ConfirmPassPayload struct {
	LobbyID string `json:"lobby_id"`
	Confirm bool   `json:"confirm"`
}

type NextPlayerPayload struct {
	LobbyID string        `json:"lobby_id"`
	Player  domain.UserID `json:"player"`
}

// server → client
type LobbiesPayload struct {
	Lobbies []service.PartyInfo `json:"lobbies"`
}

type ErrorPayload struct {
	Request string `json:"request,omitempty"`
	Message string `json:"message"`
}

func encode(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}
