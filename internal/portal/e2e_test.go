package portal

import (
	"context"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"heart-clinic/internal/clinic"
	"heart-clinic/internal/gateway"
	"heart-clinic/internal/handler"
	"heart-clinic/internal/logger"
	"heart-clinic/internal/middleware"
	"heart-clinic/internal/session"
	"heart-clinic/internal/store"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/require"
)

// TestE2E drives a headless browser through the portal against a real
// in-memory backend. It needs Chrome, so it only runs with PORTAL_E2E=1.
func TestE2E(t *testing.T) {
	if os.Getenv("PORTAL_E2E") != "1" {
		t.Skip("PORTAL_E2E not set")
	}

	log := logger.Discard()
	svc := clinic.New(store.NewMemory(), "jwt-secret", log)
	require.NoError(t, svc.SeedDoctor(context.Background(), "doctor", "doctor123"))
	rl := middleware.NewRateLimiter(100, 100)
	defer rl.Close()
	backend := httptest.NewServer(handler.New(svc, "jwt-secret", log).Routes(middleware.NewMetrics("backend"), rl, []string{"*"}))
	defer backend.Close()

	mgr := session.NewManager(session.NewMemoryKV(time.Hour), "session-secret", time.Hour)
	srv, err := New(gateway.NewHTTP(backend.URL, 5*time.Second), mgr, allFeatures, log)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Routes(middleware.NewMetrics("portal"), rl, false))
	defer ts.Close()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancel()
	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	login := func(user, pass, role string) chromedp.Tasks {
		return chromedp.Tasks{
			chromedp.Navigate(ts.URL + "/"),
			chromedp.WaitVisible(`#login-form`, chromedp.ByQuery),
			chromedp.SendKeys(`input[name="username"]`, user, chromedp.ByQuery),
			chromedp.SendKeys(`input[name="password"]`, pass, chromedp.ByQuery),
			chromedp.SetValue(`select[name="role"]`, role, chromedp.ByQuery),
			chromedp.Submit(`#login-form`, chromedp.ByQuery),
			chromedp.WaitVisible(`#current-user`, chromedp.ByQuery),
		}
	}

	t.Run("DoctorPredicts", func(t *testing.T) {
		fields := map[string]string{
			"p_name": "Ann Lee", "patientUsername": "ann", "patientPassword": "pw",
			"age": "61", "sex": "0", "cp": "1", "trestbps": "150", "chol": "250", "fbs": "0",
			"restecg": "1", "thalach": "130", "exang": "0", "oldpeak": "0.4", "slope": "1",
		}
		tasks := chromedp.Tasks{login("doctor", "doctor123", "Doctor"), chromedp.Navigate(ts.URL + "/predict"),
			chromedp.WaitVisible(`#predict-form`, chromedp.ByQuery)}
		for name, v := range fields {
			tasks = append(tasks, chromedp.SendKeys(`#predict-form input[name="`+name+`"]`, v, chromedp.ByQuery))
		}
		var score string
		tasks = append(tasks,
			chromedp.Submit(`#predict-form`, chromedp.ByQuery),
			chromedp.WaitVisible(`#result-score`, chromedp.ByQuery),
			chromedp.Text(`#result-score`, &score, chromedp.ByQuery),
			chromedp.Submit(`#logout`, chromedp.ByQuery),
			chromedp.WaitVisible(`#login-form`, chromedp.ByQuery),
		)
		require.NoError(t, chromedp.Run(ctx, tasks))
		require.Equal(t, "96%", strings.TrimSpace(score))
	})

	t.Run("PatientDashboard", func(t *testing.T) {
		var greeting string
		var predictLinks int
		err := chromedp.Run(ctx,
			login("ann", "pw", "Patient"),
			chromedp.WaitVisible(`#greeting`, chromedp.ByQuery),
			chromedp.Text(`#greeting`, &greeting, chromedp.ByQuery),
			chromedp.Evaluate(`document.querySelectorAll('#nav-predict').length`, &predictLinks),
		)
		require.NoError(t, err)
		require.Equal(t, "Hello, Ann Lee", greeting)
		require.Zero(t, predictLinks)
	})
}
