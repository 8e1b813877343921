package students

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

// No database is configured in these tests: a request that fails
// validation must be rejected before any row could be written.
func newTestApp() *fiber.App {
	app := fiber.New()
	app.Post("/api/students/", func(c *fiber.Ctx) error {
		return CreateStudentAPI(c, nil, nil)
	})
	return app
}

func postStudent(t *testing.T, app *fiber.App, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/students/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	payload, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(payload)
}

func TestCreateStudentRejectsBadOpeningBalanceBeforeInsert(t *testing.T) {
	app := newTestApp()

	status, body := postStudent(t, app,
		`{"full_name":"Test Student","grade":"4","guardian_contact":"0712000000","opening_balance":"12x.50"}`)
	if status != 400 {
		t.Fatalf("status: got %d, want 400", status)
	}
	if !strings.Contains(body, "Invalid opening_balance") {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestCreateStudentRejectsMissingFields(t *testing.T) {
	app := newTestApp()

	status, _ := postStudent(t, app, `{"full_name":"Test Student"}`)
	if status != 400 {
		t.Fatalf("status: got %d, want 400", status)
	}
}
