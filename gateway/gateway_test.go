package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"golang.org/x/crypto/bcrypt"

	"github.com/ssovee/Open-Data-API/auth"
	"github.com/ssovee/Open-Data-API/cache"
	"github.com/ssovee/Open-Data-API/database/dbtest"
	"github.com/ssovee/Open-Data-API/providers"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	db := dbtest.Open(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cur, wx, err := providers.New(providers.Options{Kind: "mock", CacheTTL: time.Minute}, cache.NewMemoryCache(), logger)
	if err != nil {
		t.Fatal(err)
	}
	g, err := New(Deps{
		DB:       db,
		Auth:     auth.NewService(db, time.Hour, bcrypt.MinCost),
		Currency: cur,
		Weather:  wx,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func do(t *testing.T, g *Gateway, schema, query string) map[string]interface{} {
	t.Helper()
	res := graphql.Do(graphql.Params{
		Schema:        *g.Schema(schema),
		RequestString: query,
		Context:       context.Background(),
	})
	if res.HasErrors() {
		t.Fatalf("%s: %v", query, res.Errors)
	}
	return res.Data.(map[string]interface{})
}

func doErr(t *testing.T, g *Gateway, schema, query string) string {
	t.Helper()
	res := graphql.Do(graphql.Params{Schema: *g.Schema(schema), RequestString: query, Context: context.Background()})
	if !res.HasErrors() {
		t.Fatalf("%s: expected errors, got %v", query, res.Data)
	}
	return res.Errors[0].Message
}

func TestCRUDSchema_UserLifecycle(t *testing.T) {
	g := newTestGateway(t)

	data := do(t, g, "users", `mutation { createUser(first_name: "Ada", email: "ada@example.com", age: 36) { id first_name age created_at } }`)
	created := data["createUser"].(map[string]interface{})
	if created["first_name"] != "Ada" || created["age"] != 36 || created["created_at"] == "" {
		t.Fatalf("createUser = %v", created)
	}
	id := created["id"].(int)

	data = do(t, g, "users", `mutation { updateUser(id: 1, last_name: "Lovelace") { first_name last_name email } }`)
	updated := data["updateUser"].(map[string]interface{})
	if updated["first_name"] != "Ada" || updated["last_name"] != "Lovelace" || updated["email"] != "ada@example.com" {
		t.Errorf("updateUser = %v", updated)
	}

	data = do(t, g, "users", `{ users(page: 1, limit: 10) { total page limit data { id last_name } } }`)
	page := data["users"].(map[string]interface{})
	if page["total"] != 1 || len(page["data"].([]interface{})) != 1 {
		t.Errorf("users = %v", page)
	}

	data = do(t, g, "users", `mutation { deleteUser(id: 1) }`)
	if data["deleteUser"] != id {
		t.Errorf("deleteUser = %v, want %d", data["deleteUser"], id)
	}

	if msg := doErr(t, g, "users", `{ user(id: 1) { id } }`); !strings.Contains(msg, "not found") {
		t.Errorf("user after delete error = %q", msg)
	}
}

func TestCRUDSchema_Validation(t *testing.T) {
	g := newTestGateway(t)

	tests := []struct {
		name  string
		query string
	}{
		{"missing required", `mutation { createUser(last_name: "x") { id } }`},
		{"bad email", `mutation { createUser(first_name: "A", email: "nope") { id } }`},
		{"rating out of range", `mutation { createMovie(title: "Heat", rating: 11) { id } }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := "users"
			if strings.Contains(tt.query, "Movie") {
				schema = "movies"
			}
			if msg := doErr(t, g, schema, tt.query); !strings.Contains(msg, "invalid input") {
				t.Errorf("error = %q", msg)
			}
		})
	}
}

func TestCRUDSchema_JobPostedAt(t *testing.T) {
	g := newTestGateway(t)

	data := do(t, g, "jobs", `mutation { createJob(title: "Gopher", company: "Acme", salary: 100) { id posted_at } }`)
	job := data["createJob"].(map[string]interface{})
	if s, _ := job["posted_at"].(string); s == "" {
		t.Errorf("posted_at not set: %v", job)
	}
}

func TestCurrencySchema(t *testing.T) {
	g := newTestGateway(t)

	data := do(t, g, "currency", `{ rate(from: "usd", to: "eur") { base target rate } }`)
	r := data["rate"].(map[string]interface{})
	if r["base"] != "USD" || r["target"] != "EUR" || r["rate"] != 0.92 {
		t.Errorf("rate = %v", r)
	}

	data = do(t, g, "currency", `{ rates { base rates { code rate } } }`)
	table := data["rates"].(map[string]interface{})
	rates := table["rates"].([]interface{})
	if table["base"] != "USD" || len(rates) != 10 {
		t.Errorf("rates = %v", table)
	}
	if first := rates[0].(map[string]interface{}); first["code"] != "AUD" {
		t.Errorf("rates not sorted, first = %v", first)
	}

	doErr(t, g, "currency", `{ rate(from: "USD", to: "XXX") { rate } }`)
}

func TestWeatherSchema(t *testing.T) {
	g := newTestGateway(t)

	data := do(t, g, "weather", `{ weather(city: "london") { city condition humidity } }`)
	w := data["weather"].(map[string]interface{})
	if w["city"] != "London" || w["humidity"] != 81 {
		t.Errorf("weather = %v", w)
	}
	doErr(t, g, "weather", `{ weather(city: "Atlantis") { city } }`)
}

func TestAuthSchema(t *testing.T) {
	g := newTestGateway(t)

	do(t, g, "auth", `mutation { signup(name: "Ada", email: "ada@example.com", password: "s3cret!") { id email } }`)
	data := do(t, g, "auth", `mutation { login(email: "ada@example.com", password: "s3cret!") { token account { email } } }`)
	token := data["login"].(map[string]interface{})["token"].(string)

	data = do(t, g, "auth", `{ me(token: "`+token+`") { name email } }`)
	if me := data["me"].(map[string]interface{}); me["name"] != "Ada" {
		t.Errorf("me = %v", me)
	}

	doErr(t, g, "auth", `mutation { login(email: "ada@example.com", password: "wrong-pass") { token } }`)
	doErr(t, g, "auth", `mutation { signup(email: "ada@example.com", password: "s3cret!") { id } }`)
}

func TestGateway_Handler(t *testing.T) {
	g := newTestGateway(t)

	body := strings.NewReader(`{"query":"{ weather(city: \"Tokyo\") { condition } }"}`)
	req := httptest.NewRequest(http.MethodPost, "/graphql/v1/weather", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	g.Handler("weather").ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp struct {
		Data struct {
			Weather struct {
				Condition string `json:"condition"`
			} `json:"weather"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Weather.Condition != "Clear" {
		t.Errorf("condition = %q", resp.Data.Weather.Condition)
	}
}
