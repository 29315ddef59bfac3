package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/renju-online/client-go/internal/client"
	"github.com/renju-online/client-go/internal/config"
	"github.com/renju-online/client-go/internal/conn"
	"github.com/renju-online/client-go/internal/protocol"
)

func main() {
	cfg := config.Load()

	var log *zap.Logger
	var err error
	if cfg.Debug {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.Token == "" {
		fmt.Fprintln(os.Stderr, "RENJU_TOKEN is not set; log in first")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := conn.NewManager(cfg.ServerURL, log)
	sc := client.New(ctx, manager, log)

	// Feed transport output into the session context, in arrival order.
	go sc.PumpFrames(manager.Frames())
	go func() {
		for {
			select {
			case p := <-manager.Presence():
				select {
				case sc.Inbox() <- client.Presence{Online: p.Online, ForcedLogout: p.ForcedLogout}:
				case <-sc.Done():
					return
				}
			case <-sc.Done():
				return
			}
		}
	}()

	notes := make(chan client.Notification, 64)
	sc.Inbox() <- client.Subscribe{ID: uuid.NewString(), Outbox: notes}
	go printNotifications(notes, cancel)

	if err := manager.Connect(ctx, cfg.Token); err != nil {
		log.Fatal("connect failed", zap.Error(err))
	}
	defer manager.Close()

	repl(sc)
	sc.Inbox() <- client.Shutdown{}
}

func printNotifications(notes <-chan client.Notification, onLogout context.CancelFunc) {
	for n := range notes {
		switch v := n.(type) {
		case client.OnlineCount:
			fmt.Printf("online: %d\n", v.Total)
		case client.PresenceChanged:
			if v.Online {
				fmt.Println("connected")
			} else {
				fmt.Println("disconnected")
			}
		case client.LoggedOut:
			fmt.Println("session rejected by server; please log in again")
			onLogout()
		case client.GameOpened:
			fmt.Printf("opened game %s as role %s\n", v.GameID, v.MyRole)
		case client.GameUpdated:
			fmt.Printf("game %s updated\n", v.GameID)
		case client.TurnGranted:
			fmt.Printf("your move in game %s\n", v.GameID)
		case client.MoveApplied:
			fmt.Printf("move (%d,%d) by role %s\n", v.Move.X, v.Move.Y, v.Move.Role)
		case client.GameOver:
			if v.Result != nil {
				fmt.Printf("game %s over: %s wins (%s)\n", v.GameID, v.Result.Winner, v.Result.Cause)
			} else {
				fmt.Printf("game %s removed\n", v.GameID)
			}
		case client.ListChanged:
			// Quiet; the list is shown on demand.
		case client.ServerError:
			fmt.Printf("server error: %s\n", v.Detail)
		}
	}
}

func repl(sc *client.SessionContext) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("commands: list | join <id> | create | ready | move <x> <y> | leave | quit")

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return

		case "list":
			for _, s := range view(sc).List {
				fmt.Printf("  %s  %-8s  %dx%d  players=%d\n",
					s.ID, s.State, s.BoardSize, s.BoardSize, s.NumPlayers)
			}

		case "join":
			if len(fields) != 2 {
				fmt.Println("usage: join <game-id>")
				continue
			}
			sc.Inbox() <- client.Submit{Intent: &protocol.JoinGameIntent{GameID: fields[1]}}

		case "create":
			sc.Inbox() <- client.Submit{Intent: &protocol.CreateGameIntent{Modes: []protocol.GameMode{}}}

		case "ready":
			if id, ok := focusedGame(sc); ok {
				sc.Inbox() <- client.Submit{Intent: &protocol.ReadyIntent{GameID: id}}
			}

		case "move":
			if len(fields) != 3 {
				fmt.Println("usage: move <x> <y>")
				continue
			}
			x, errX := strconv.Atoi(fields[1])
			y, errY := strconv.Atoi(fields[2])
			if errX != nil || errY != nil {
				fmt.Println("coordinates must be numbers")
				continue
			}
			if id, ok := focusedGame(sc); ok {
				sc.Inbox() <- client.Submit{Intent: &protocol.MoveIntent{GameID: id, X: x, Y: y}}
			}

		case "leave":
			if id, ok := focusedGame(sc); ok {
				sc.Inbox() <- client.Submit{Intent: &protocol.LeaveIntent{GameID: id}}
			}

		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

func view(sc *client.SessionContext) client.View {
	reply := make(chan client.View, 1)
	select {
	case sc.Inbox() <- client.GetState{Reply: reply}:
	case <-sc.Done():
		return client.View{}
	}
	select {
	case v := <-reply:
		return v
	case <-sc.Done():
		return client.View{}
	}
}

func focusedGame(sc *client.SessionContext) (string, bool) {
	v := view(sc)
	if v.Focused == nil {
		fmt.Println("no game open")
		return "", false
	}
	return v.Focused.GameID, true
}
