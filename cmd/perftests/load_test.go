package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"bidmarket-client/internal/auctionservice"
	"bidmarket-client/internal/client"
	"bidmarket-client/internal/credstore"
	"bidmarket-client/internal/fakeserver"
	"bidmarket-client/internal/models"
	"bidmarket-client/internal/restclient"
)

// LoadScenario defines configurable load parameters against the fake
// backend.
type LoadScenario struct {
	Name        string
	NumClients  int
	OpsPerUser  int
	WriteRatio  int // percent of ops that create an auction
	SeedListing int
}

// OperationMetrics collects latencies safely across goroutines.
type OperationMetrics struct {
	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(d time.Duration) {
	om.mu.Lock()
	om.latencies = append(om.latencies, d)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (min, max, avg, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()
	if len(om.latencies) == 0 {
		return
	}
	sort.Slice(om.latencies, func(i, j int) bool { return om.latencies[i] < om.latencies[j] })

	min = om.latencies[0]
	max = om.latencies[len(om.latencies)-1]
	var total time.Duration
	for _, d := range om.latencies {
		total += d
	}
	avg = total / time.Duration(len(om.latencies))
	p95 = om.latencies[int(0.95*float64(len(om.latencies)))]
	return
}

func TestLoad_ConcurrentClients(t *testing.T) {
	if testing.Short() {
		t.Skip("load test skipped in short mode")
	}

	scenarios := []LoadScenario{
		{Name: "read_heavy", NumClients: 8, OpsPerUser: 50, WriteRatio: 10, SeedListing: 100},
		{Name: "write_heavy", NumClients: 8, OpsPerUser: 50, WriteRatio: 60, SeedListing: 20},
	}

	for _, sc := range scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			runLoadScenario(t, sc)
		})
	}
}

func runLoadScenario(t *testing.T, sc LoadScenario) {
	t.Helper()

	repo := fakeserver.NewMemoryRepo()
	server := fakeserver.Start(repo)
	defer server.Close()

	seller := repo.SeedUser(models.User{Email: "load@example.com", CIN: 1}, "pw", true, "")
	future := time.Now().Add(24 * time.Hour)
	for i := 0; i < sc.SeedListing; i++ {
		repo.SeedAuction(models.Auction{
			Title:      fmt.Sprintf("Seed listing %d", i),
			Status:     models.AuctionStatusActive,
			ExpireDate: &future,
			Seller:     seller,
		})
	}

	var failures int64
	metrics := &OperationMetrics{}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < sc.NumClients; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			creds, err := credstore.NewFileStore(afero.NewMemMapFs(), "/creds.json")
			if err != nil {
				atomic.AddInt64(&failures, 1)
				return
			}
			api := restclient.New(restclient.Config{BaseURL: server.URL})
			c := client.New(api, creds)
			if err := c.Login(ctx, "load@example.com", "pw"); err != nil {
				atomic.AddInt64(&failures, 1)
				return
			}

			rnd := rand.New(rand.NewSource(int64(n)))
			for op := 0; op < sc.OpsPerUser; op++ {
				start := time.Now()
				if rnd.Intn(100) < sc.WriteRatio {
					err = c.CreateAuction(ctx, auctionservice.Input{
						Title:         fmt.Sprintf("Load listing %d-%d", n, op),
						StartingPrice: 10,
						Category:      models.CategoryOther,
						ExpireDate:    time.Now().Add(time.Hour),
					}, nil)
				} else {
					err = c.RefreshAuctions(ctx)
				}
				metrics.Record(time.Since(start))
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
		}(i)
	}
	wg.Wait()

	require.Zero(t, atomic.LoadInt64(&failures), "no operation may fail under load")

	min, max, avg, p95 := metrics.Stats()
	t.Logf("%s: clients=%d ops/user=%d min=%v avg=%v p95=%v max=%v",
		sc.Name, sc.NumClients, sc.OpsPerUser, min, avg, p95, max)
}
