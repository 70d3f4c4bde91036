package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	baseURL  = flag.String("url", env("API_BASE_URL", "http://localhost:8080"), "Server base URL")
	nNotes   = flag.Int("notes", envInt("NOTES", 50), "How many notes to create")
	nPosts   = flag.Int("posts", envInt("POSTS", 10), "How many blog posts to create")
	nTravel  = flag.Int("travel", envInt("TRAVEL", 10), "How many travel entries to create")
	seedFlag = flag.Int64("seed", 0, "Faker seed; 0 picks one from the clock")
)

var palette = []string{"blue", "green", "yellow", "red", "purple", "orange", "pink", "gray"}

var reactions = []string{"Love", "Like", "Laugh", "Wow", "Sad"}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
	}
	return def
}

func postJSON(path string, body any) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, *baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return http.DefaultClient.Do(req)
}

// expect posts body to path and decodes the reply when it has the wanted status
func expect(path string, body any, status int, out any) error {
	resp, err := postJSON(path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != status {
		return fmt.Errorf("POST %s failed (%d): %s", path, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func progress(kind string, i, total int) {
	if i%25 == 0 || i == total {
		fmt.Printf("  … %s %d/%d\n", kind, i, total)
	}
}

func main() {
	flag.Parse()
	seed := *seedFlag
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)

	fmt.Printf("Seeding %s (notes=%d posts=%d travel=%d seed=%d)\n", *baseURL, *nNotes, *nPosts, *nTravel, seed)

	steps := []func() error{
		func() error { return createNotes(*nNotes) },
		func() error { return createPosts(*nPosts) },
		func() error { return createTravel(*nTravel) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			fmt.Fprintln(os.Stderr, "FATAL:", err)
			os.Exit(1)
		}
	}

	fmt.Println("✔ done")
}

func todoContent() string {
	var buf bytes.Buffer
	for i := 0; i < gofakeit.Number(2, 5); i++ {
		fmt.Fprintf(&buf, `<div class="todo-item"><div class="todo-checkbox"></div><div class="todo-content">%s</div></div>`,
			gofakeit.HackerPhrase())
	}
	return buf.String()
}

func createNotes(total int) error {
	for i := 1; i <= total; i++ {
		todo := gofakeit.Bool()
		note := map[string]any{
			"title":      gofakeit.Sentence(3),
			"content":    "<p>" + gofakeit.Paragraph(1, 3, 30, "</p><p>") + "</p>",
			"color":      gofakeit.RandomString(palette),
			"isTodoList": todo,
		}
		if todo {
			note["content"] = todoContent()
		}
		if err := expect("/api/v1/notes", note, http.StatusCreated, nil); err != nil {
			return fmt.Errorf("note %d: %w", i, err)
		}
		progress("notes", i, total)
	}
	return nil
}

func createPosts(total int) error {
	for i := 1; i <= total; i++ {
		post := map[string]any{
			"title":      gofakeit.BookTitle(),
			"excerpt":    gofakeit.Sentence(12),
			"content":    "<p>" + gofakeit.Paragraph(3, 4, 40, "</p><p>") + "</p>",
			"coverImage": gofakeit.URL(),
		}
		var created struct {
			ID string `json:"id"`
		}
		if err := expect("/api/v1/posts", post, http.StatusCreated, &created); err != nil {
			return fmt.Errorf("post %d: %w", i, err)
		}

		for j := 0; j < gofakeit.Number(0, 4); j++ {
			comment := map[string]any{"userName": gofakeit.Username(), "text": gofakeit.Sentence(8)}
			if err := expect("/api/v1/posts/"+created.ID+"/comments", comment, http.StatusCreated, nil); err != nil {
				return fmt.Errorf("post %d comment: %w", i, err)
			}
		}
		for j := 0; j < gofakeit.Number(0, 6); j++ {
			path := "/api/v1/posts/" + created.ID + "/reactions/" + gofakeit.RandomString(reactions)
			if err := expect(path, nil, http.StatusOK, nil); err != nil {
				return fmt.Errorf("post %d reaction: %w", i, err)
			}
		}
		progress("posts", i, total)
	}
	return nil
}

func createTravel(total int) error {
	for i := 1; i <= total; i++ {
		visited := gofakeit.DateRange(time.Now().AddDate(-5, 0, 0), time.Now())
		entry := map[string]any{
			"name":  gofakeit.City() + ", " + gofakeit.Country(),
			"date":  visited.UTC().Format(time.RFC3339),
			"notes": gofakeit.Sentence(15),
			"image": gofakeit.URL(),
			"coordinates": map[string]float64{
				"lat": gofakeit.Latitude(),
				"lng": gofakeit.Longitude(),
			},
		}
		if err := expect("/api/v1/travel", entry, http.StatusCreated, nil); err != nil {
			return fmt.Errorf("travel entry %d: %w", i, err)
		}
		progress("travel", i, total)
	}
	return nil
}
