// Command chat is a terminal client for the support chat: guests
// start a conversation with their name and phone, admins log in, list
// pending chats, and join one. Typed lines are sent as messages;
// inbound messages print as they arrive.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"github.com/nvthuy/salon-support/internal/client/api"
	"github.com/nvthuy/salon-support/internal/client/feed"
	"github.com/nvthuy/salon-support/internal/client/session"
	"github.com/nvthuy/salon-support/internal/client/view"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "backend base URL")
	name := flag.String("name", "", "guest name (guest mode)")
	phone := flag.String("phone", "", "guest phone (guest mode)")
	admin := flag.Bool("admin", false, "run in admin mode")
	user := flag.String("user", "admin", "admin username")
	pass := flag.String("pass", "", "admin password")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Println("loaded settings from .env")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := api.New(*server, os.Getenv("CHAT_TOKEN"))
	printer := newPrinter()

	var controller *session.Controller
	controller = session.New(session.Config{
		Backend:  client,
		Endpoint: wsEndpoint(*server),
		OnUpdate: func() {
			printer.flush(controller)
		},
		OnConnError: func(err error) {
			fmt.Printf("\n! connection trouble: %v (use /reconnect)\n> ", err)
		},
	})
	defer controller.Close()

	widget := view.NewWidget()

	if *admin {
		runAdmin(ctx, client, controller, widget, printer, *user, *pass)
		return
	}
	runGuest(ctx, controller, printer, *name, *phone)
}

// wsEndpoint derives the channel URL from the REST base.
func wsEndpoint(server string) string {
	ws := strings.Replace(server, "http", "ws", 1)
	return ws + "/api/ws/chat"
}

// printer renders newly arrived messages exactly once.
type printer struct {
	mu      sync.Mutex
	printed int
}

func newPrinter() *printer { return &printer{} }

func (p *printer) flush(c *session.Controller) {
	p.mu.Lock()
	defer p.mu.Unlock()

	messages := c.Messages()
	if p.printed > len(messages) {
		// Log was rebuilt (reconnect) or cleared.
		p.printed = 0
	}
	for _, m := range messages[p.printed:] {
		fmt.Printf("[%s] %s\n", m.SenderRole, m.Content)
	}
	p.printed = len(messages)
}

func (p *printer) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printed = 0
}

func runGuest(ctx context.Context, controller *session.Controller, printer *printer, name, phone string) {
	if name == "" || phone == "" {
		log.Fatal("guest mode requires -name and -phone")
	}

	if err := controller.StartGuest(ctx, name, phone); err != nil {
		log.Fatalf("failed to start chat: %v", err)
	}
	fmt.Printf("chat %s started, type your message:\n", controller.ChatID())

	repl(ctx, controller, nil, nil, printer)
}

func runAdmin(ctx context.Context, client *api.Client, controller *session.Controller, widget *view.Widget, printer *printer, user, pass string) {
	if client.Token() == "" {
		if pass == "" {
			log.Fatal("admin mode requires -pass or CHAT_TOKEN")
		}
		if _, err := client.Login(ctx, user, pass); err != nil {
			log.Fatalf("login failed: %v", err)
		}
	}

	chats := feed.New(client, controller)
	if err := chats.Refresh(ctx); err != nil {
		log.Fatalf("failed to load notifications: %v", err)
	}
	printFeed(chats)

	repl(ctx, controller, chats, widget, printer)
}

func printFeed(chats *feed.Feed) {
	fmt.Printf("%d chats waiting:\n", chats.Count())
	for _, s := range chats.List() {
		fmt.Printf("  %s  %-20s %s\n", s.ChatID, s.DisplayName(), s.Preview())
	}
}

func repl(ctx context.Context, controller *session.Controller, chats *feed.Feed, widget *view.Widget, printer *printer) {
	go func() {
		<-ctx.Done()
		os.Stdin.Close()
	}()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":

		case line == "/quit":
			controller.Close()
			return

		case line == "/reconnect":
			if err := controller.Reconnect(ctx); err != nil {
				fmt.Printf("reconnect failed: %v\n", err)
			} else {
				printer.reset()
				printer.flush(controller)
			}

		case line == "/chats" && chats != nil:
			if err := chats.Refresh(ctx); err != nil {
				fmt.Printf("refresh failed: %v\n", err)
			} else {
				printFeed(chats)
			}

		case strings.HasPrefix(line, "/join ") && chats != nil:
			chatID := strings.TrimSpace(strings.TrimPrefix(line, "/join "))
			controller.Close()
			if err := chats.Select(ctx, chatID); err != nil {
				fmt.Printf("join failed: %v\n", err)
				break
			}
			widget.SelectChat(chatID)
			printer.reset()
			fmt.Printf("joined chat %s (guest: %s)\n", chatID, controller.GuestName())
			printer.flush(controller)

		default:
			if err := controller.Send(line); err != nil {
				fmt.Printf("send failed: %v\n", err)
			}
		}
		printer.flush(controller)
		fmt.Print("> ")
	}
}
