package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"vrhub/internal/notify"
	"vrhub/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

type authResponse struct {
	Token string `json:"token"`
}

type gameListResponse struct {
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
	Items  []models.Game `json:"items"`
}

func main() {
	global := flag.NewFlagSet("vrhub", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	client := &http.Client{Timeout: 15 * time.Second}

	switch cmd {
	case "auth":
		handleAuth(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "games":
		handleGames(ctx, client, *baseURL, sub, args[2:])
	case "import":
		handleImport(ctx, *baseURL, *tokenPath)
	case "metadata":
		handleMetadata(ctx, client, *baseURL, *tokenPath, sub)
	case "sync":
		handleSync(*baseURL, sub)
	case "notify":
		handleNotify(sub, args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *email == "" || *password == "" {
			log.Fatal("email and password are required")
		}

		payload := map[string]string{"email": *email, "password": *password}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/login", "", payload, &resp); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("logged in")
	case "register":
		fs := flag.NewFlagSet("auth register", flag.ExitOnError)
		username := fs.String("username", "", "username")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *username == "" || *email == "" || *password == "" {
			log.Fatal("username, email, and password are required")
		}

		payload := map[string]string{"username": *username, "email": *email, "password": *password}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/register", "", payload, &resp); err != nil {
			log.Fatalf("register failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("registered and logged in")
	case "logout":
		if token, err := readToken(tokenPath); err == nil && token != "" {
			_ = doJSON(ctx, client, http.MethodPost, baseURL+"/auth/logout", token, nil, nil)
		}
		if err := clearToken(tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		fmt.Println("logged out")
	default:
		log.Fatal("usage: vrhub auth <login|register|logout>")
	}
}

func handleGames(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "list":
		fs := flag.NewFlagSet("games list", flag.ExitOnError)
		query := fs.String("q", "", "search query")
		installed := fs.String("installed", "", "installed filter (true/false)")
		platforms := fs.String("platforms", "", "comma-separated platforms")
		limit := fs.Int("limit", 50, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/games")
		if err != nil {
			log.Fatalf("invalid base url: %v", err)
		}
		qv := u.Query()
		if *query != "" {
			qv.Set("q", *query)
		}
		if *installed != "" {
			qv.Set("installed", *installed)
		}
		if *platforms != "" {
			qv.Set("platforms", *platforms)
		}
		qv.Set("limit", fmt.Sprintf("%d", *limit))
		qv.Set("offset", fmt.Sprintf("%d", *offset))
		u.RawQuery = qv.Encode()

		var resp gameListResponse
		if err := doJSON(ctx, client, http.MethodGet, u.String(), "", nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}

		fmt.Printf("%d of %d titles\n", len(resp.Items), resp.Total)
		for _, g := range resp.Items {
			installedMark := " "
			if g.IsInstalled {
				installedMark = "*"
			}
			fmt.Printf("%s %-20s %s\n", installedMark, g.ID, g.Name)
		}
	case "show":
		if len(args) == 0 {
			log.Fatal("usage: vrhub games show <id>")
		}
		var g models.Game
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/games/"+url.PathEscape(args[0]), "", nil, &g); err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(g)
	default:
		log.Fatal("usage: vrhub games <list|show>")
	}
}

func handleImport(ctx context.Context, baseURL, tokenPath string) {
	token := mustToken(tokenPath)

	// imports can take a while against the live catalog
	importClient := &http.Client{Timeout: 10 * time.Minute}

	var resp struct {
		Total   int    `json:"total"`
		Warning string `json:"warning"`
	}
	if err := doJSON(ctx, importClient, http.MethodPost, baseURL+"/import", token, nil, &resp); err != nil {
		log.Fatalf("import failed: %v", err)
	}
	if resp.Warning != "" {
		log.Printf("warning: %s", resp.Warning)
	}
	fmt.Printf("imported %d titles\n", resp.Total)
}

func handleMetadata(ctx context.Context, client *http.Client, baseURL, tokenPath, id string) {
	if id == "" {
		log.Fatal("usage: vrhub metadata <id>")
	}
	token := mustToken(tokenPath)

	var g models.Game
	if err := doJSON(ctx, client, http.MethodGet, baseURL+"/metadata/"+url.PathEscape(id), token, nil, &g); err != nil {
		log.Fatalf("metadata failed: %v", err)
	}
	printJSON(g)
}

func handleSync(baseURL, sub string) {
	if sub != "listen" {
		log.Fatal("usage: vrhub sync listen")
	}

	wsURL, err := websocketURL(baseURL, "/ws")
	if err != nil {
		log.Fatalf("invalid base url: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", wsURL, err)
	}
	defer conn.Close()

	log.Printf("listening for import events on %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("connection closed: %v", err)
		}
		fmt.Println(strings.TrimSpace(string(msg)))
	}
}

func handleNotify(sub string, args []string) {
	if sub != "subscribe" {
		log.Fatal("usage: vrhub notify subscribe [-addr host:port] [-id client-id]")
	}

	fs := flag.NewFlagSet("notify subscribe", flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:7071", "UDP notify server address")
	clientID := fs.String("id", "cli", "client id to register as")
	_ = fs.Parse(args)

	udpAddr, err := net.ResolveUDPAddr("udp", *addr)
	if err != nil {
		log.Fatalf("resolve %s: %v", *addr, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		log.Fatalf("dial %s: %v", *addr, err)
	}
	defer conn.Close()

	reg, _ := json.Marshal(notify.RegisterMessage{
		Type:     notify.RegisterMessageType,
		ClientID: *clientID,
	})
	if _, err := conn.Write(reg); err != nil {
		log.Fatalf("register: %v", err)
	}

	log.Printf("subscribed to new-game notifications on %s", *addr)
	buf := make([]byte, 2048)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			log.Fatalf("read: %v", err)
		}
		fmt.Println(strings.TrimSpace(string(buf[:n])))
	}
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return err
	}
	return nil
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.vrhub-token.json"
	}
	return filepath.Join(home, ".vrhub", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return strings.TrimSpace(td.Token), nil
}

func mustToken(path string) string {
	token, err := readToken(path)
	if err != nil {
		log.Fatalf("token not found, please login: %v", err)
	}
	if token == "" {
		log.Fatal("token empty, please login")
	}
	return token
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("vrhub <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth login|register|logout")
	fmt.Println("  games list|show")
	fmt.Println("  import")
	fmt.Println("  metadata <id>")
	fmt.Println("  sync listen")
	fmt.Println("  notify subscribe")
}
