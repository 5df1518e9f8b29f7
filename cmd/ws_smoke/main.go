package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"luna/internal/domain"
	"luna/internal/game"
	"luna/internal/logger"
	"luna/internal/service"
	"luna/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

// Plays a scripted two-player game against a running server: A answers every
// prompt, B always passes, so A should win once B runs out of lives. The
// database needs at least one truth prompt.
func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "server host:port")
	userA := flag.Int64("a", 3001, "user id of player A")
	userB := flag.Int64("b", 3002, "user id of player B")
	timeout := flag.Duration("timeout", 5*time.Minute, "give up after")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}
	service.InitJWT(secret)

	a := dial(*addr, domain.UserID(*userA))
	defer a.conn.Close()
	b := dial(*addr, domain.UserID(*userB))
	defer b.conn.Close()

	deadline := time.Now().Add(*timeout)
	a.conn.SetReadDeadline(deadline)
	b.conn.SetReadDeadline(deadline)

	a.send(ws.MsgCreateLobby, ws.CreateLobbyPayload{Name: "smoke"})
	var lobby game.LobbyUpdated
	a.await(game.LobbyUpdated{}.EventName(), &lobby)
	logger.Info("lobby created", "lobby_id", lobby.Lobby.ID)

	b.send(ws.MsgJoinLobby, ws.LobbyPayload{LobbyID: lobby.Lobby.ID})
	a.await(game.LobbyUpdated{}.EventName(), &lobby)
	a.send(ws.MsgStartEarly, ws.LobbyPayload{LobbyID: lobby.Lobby.ID})

	var wg sync.WaitGroup
	results := make(chan string, 2)
	for _, p := range []*player{a, b} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- p.play(lobby.Lobby.ID, p == b)
		}()
	}
	wg.Wait()
	close(results)

	for r := range results {
		fmt.Println(r)
	}
	logger.Info("smoke test finished")
}

type player struct {
	id   domain.UserID
	conn *websocket.Conn
}

func dial(addr string, id domain.UserID) *player {
	token, err := service.GenerateJWT(id, time.Hour)
	if err != nil {
		logger.Fatal("generate token", "error", err)
	}
	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws?token=%s", addr, token), nil)
	if err != nil {
		logger.Fatal("dial", "user_id", id, "error", err)
	}
	return &player{id: id, conn: conn}
}

func (p *player) send(msgType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Fatal("encode", "error", err)
	}
	if err := p.conn.WriteJSON(ws.Envelope{Type: msgType, Payload: raw}); err != nil {
		logger.Fatal("write", "user_id", p.id, "error", err)
	}
}

func (p *player) read() ws.Envelope {
	var env ws.Envelope
	if err := p.conn.ReadJSON(&env); err != nil {
		logger.Fatal("read", "user_id", p.id, "error", err)
	}
	if env.Type == ws.MsgError {
		logger.Warn("server error", "user_id", p.id, "payload", string(env.Payload))
	}
	return env
}

func (p *player) await(msgType string, into any) {
	for {
		env := p.read()
		if env.Type == msgType {
			if err := json.Unmarshal(env.Payload, into); err != nil {
				logger.Fatal("decode", "type", msgType, "error", err)
			}
			return
		}
	}
}

// play answers requests addressed to p until the game ends.
func (p *player) play(lobbyID string, passer bool) string {
	for {
		env := p.read()
		switch env.Type {
		case game.CategoryRequested{}.EventName():
			var e game.CategoryRequested
			if json.Unmarshal(env.Payload, &e) == nil && e.Player == p.id {
				p.send(ws.MsgCategory, ws.CategoryPayload{LobbyID: lobbyID, Category: "truth"})
			}
		case game.ResponseRequested{}.EventName():
			var e game.ResponseRequested
			if json.Unmarshal(env.Payload, &e) != nil || e.Player != p.id {
				continue
			}
			if passer {
				p.send(ws.MsgPass, ws.LobbyPayload{LobbyID: lobbyID})
			} else {
				p.send(ws.MsgRespond, ws.RespondPayload{LobbyID: lobbyID, Text: "a smoke test answer"})
			}
		case game.PassConfirmRequested{}.EventName():
			var e game.PassConfirmRequested
			if json.Unmarshal(env.Payload, &e) == nil && e.Player == p.id {
				p.send(ws.MsgConfirmPass, ws.ConfirmPassPayload{LobbyID: lobbyID, Confirm: true})
			}
		case game.NextPlayerRequested{}.EventName():
			var e game.NextPlayerRequested
			if json.Unmarshal(env.Payload, &e) == nil && e.Player == p.id && len(e.Candidates) > 0 {
				p.send(ws.MsgNextPlayer, ws.NextPlayerPayload{LobbyID: lobbyID, Player: e.Candidates[0].Player})
			}
		case game.GameOver{}.EventName():
			var e game.GameOver
			if err := json.Unmarshal(env.Payload, &e); err != nil {
				return fmt.Sprintf("%s: game over (undecodable result: %v)", p.id, err)
			}
			return fmt.Sprintf("%s: game over, winner %s after %d turns", p.id, e.Result.Winner, e.Result.Turns)
		case game.SessionAborted{}.EventName():
			return fmt.Sprintf("%s: session aborted: %s", p.id, env.Payload)
		}
	}
}
