package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"sync/atomic"
	"time"

	"user-account-service/api"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

var (
	targetHost = flag.String("host", "http://localhost:8080", "базовый адрес сервиса")
	rps        = flag.Int("rps", 20, "запросов в секунду")
	duration   = flag.Duration("duration", time.Minute, "длительность атаки")
	seedUsers  = flag.Int("users", 100, "сколько пользователей создать перед атакой")
)

var (
	users   []api.User
	counter atomic.Int64
	httpc   = &http.Client{Timeout: 10 * time.Second}
)

func postJSON(url string, body, out any) (int, error) {
	b, _ := json.Marshal(body)
	resp, err := httpc.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 400 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

// Seed
func seedData() error {
	log.Println("Seeding: creating users...")

	runID := time.Now().Unix() % 100000
	for i := 1; i <= *seedUsers; i++ {
		subscribed := i%2 == 0
		offset := fmt.Sprintf("%+03d:00", i%12-6)
		req := api.CreateUserJSONBody{
			Username:     fmt.Sprintf("lt%d_%d", runID, i),
			Email:        fmt.Sprintf("lt%d_%d@load.test", runID, i),
			UtcOffset:    &offset,
			IsSubscribed: &subscribed,
		}

		var user api.User
		status, err := postJSON(*targetHost+"/users", req, &user)
		if err != nil {
			return err
		}
		if status >= 400 {
			log.Printf("WARN POST /users returned %d\n", status)
			continue
		}

		users = append(users, user)
	}

	if len(users) == 0 {
		return fmt.Errorf("no users were created")
	}

	log.Printf("Seed completed: users=%d\n", len(users))
	return nil
}

// Targeter
func makeTargeter() vegeta.Targeter {
	return func(t *vegeta.Target) error {
		r := rand.Float64()
		user := users[rand.IntN(len(users))]
		t.Body = nil
		t.Header = map[string][]string{"Accept": {"application/json"}}

		switch {
		// 50% GET /users/{oid}
		case r < 0.50:
			t.Method = http.MethodGet
			t.URL = fmt.Sprintf("%s/users/%s", *targetHost, user.Oid)

		// 20% GET /users/by-username/{username}
		case r < 0.70:
			t.Method = http.MethodGet
			t.URL = fmt.Sprintf("%s/users/by-username/%s", *targetHost, user.Username)

		// 15% GET /users
		case r < 0.85:
			t.Method = http.MethodGet
			t.URL = fmt.Sprintf("%s/users?limit=20&offset=%d", *targetHost, rand.IntN(len(users)))

		// 10% PATCH subscribe/unsubscribe, генерирует события для планировщика
		case r < 0.95:
			action := "subscribe"
			if rand.IntN(2) == 0 {
				action = "unsubscribe"
			}
			t.Method = http.MethodPatch
			t.URL = fmt.Sprintf("%s/users/%s/%s", *targetHost, user.Oid, action)

		// 5% POST /users
		default:
			n := counter.Add(1)
			body, _ := json.Marshal(api.CreateUserJSONBody{
				Username: fmt.Sprintf("ld%d_%d", time.Now().Unix()%10000, n),
				Email:    fmt.Sprintf("ld%d_%d@load.test", time.Now().UnixNano(), n),
			})
			t.Method = http.MethodPost
			t.URL = *targetHost + "/users"
			t.Body = body
			t.Header = map[string][]string{"Content-Type": {"application/json"}}
		}
		return nil
	}
}

// Attack
func runAttack() {
	rate := vegeta.Rate{Freq: *rps, Per: time.Second}
	attacker := vegeta.NewAttacker()
	targeter := makeTargeter()

	var metrics vegeta.Metrics

	log.Printf("Starting attack: %s for %s", *targetHost, *duration)
	for res := range attacker.Attack(targeter, rate, *duration, "load-test") {
		metrics.Add(res)
	}
	metrics.Close()

	fmt.Println("=== Results ===")
	fmt.Printf("Requests: %d\n", metrics.Requests)
	fmt.Printf("Success rate: %.4f%%\n", metrics.Success*100)
	fmt.Printf("Latency mean: %s\n", metrics.Latencies.Mean)
	fmt.Printf("Latency P95: %s\n", metrics.Latencies.P95)
	fmt.Printf("Latency P99: %s\n", metrics.Latencies.P99)
	for code, n := range metrics.StatusCodes {
		fmt.Printf("Status %s: %d\n", code, n)
	}
}

func main() {
	flag.Parse()

	if err := seedData(); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	runAttack()
}
