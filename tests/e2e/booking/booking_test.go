//go:build e2e

package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"openbook/tests/common/dbtest"
	"openbook/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BookingSuite struct {
	e2e.SharedSuite
}

func TestBookingSuite(t *testing.T) {
	suite.Run(t, new(BookingSuite))
}

type bookingResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	ResourceID      string    `json:"resourceId"`
	ResourceName    string    `json:"resourceName"`
	TaskName        string    `json:"taskName"`
	MemoryGB        int32     `json:"memoryGb"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	OriginalEndTime time.Time `json:"originalEndTime"`
	Status          string    `json:"status"`
}

func (s *BookingSuite) createBooking(token string, resourceID uuid.UUID, memoryGB int32, start, end time.Time) (string, int, string) {
	rec := s.Request(http.MethodPost, "/api/bookings", token, map[string]any{
		"resource_id": resourceID,
		"task_name":   "e2e training run",
		"memory_gb":   memoryGB,
		"start_time":  start,
		"end_time":    end,
	})
	if rec.Code != http.StatusCreated {
		return "", rec.Code, rec.Body.String()
	}

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID, rec.Code, rec.Body.String()
}

func (s *BookingSuite) getBooking(token, id string) (bookingResponse, int) {
	rec := s.Request(http.MethodGet, "/api/bookings/"+id, token, nil)
	var resp bookingResponse
	if rec.Code == http.StatusOK {
		require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return resp, rec.Code
}

func (s *BookingSuite) TestBookingLifecycle() {
	s.Run("create, read, list, cancel", func() {
		token := s.Login(dbtest.StandardEmail)
		start := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
		end := start.Add(2 * time.Hour)

		id, code, body := s.createBooking(token, dbtest.ResourceA100ID, 16, start, end)
		require.Equal(s.T(), http.StatusCreated, code, body)

		view, code := s.getBooking(token, id)
		require.Equal(s.T(), http.StatusOK, code)
		require.Equal(s.T(), "upcoming", view.Status)
		require.Equal(s.T(), "gpu-a100", view.ResourceName)
		require.Equal(s.T(), int32(16), view.MemoryGB)
		require.True(s.T(), view.EndTime.Equal(view.OriginalEndTime))

		rec := s.Request(http.MethodGet, "/api/bookings", token, nil)
		require.Equal(s.T(), http.StatusOK, rec.Code)
		var list []bookingResponse
		require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(s.T(), list, 1)

		rec = s.Request(http.MethodDelete, "/api/bookings/"+id, token, nil)
		require.Equal(s.T(), http.StatusNoContent, rec.Code)

		view, code = s.getBooking(token, id)
		require.Equal(s.T(), http.StatusOK, code)
		require.Equal(s.T(), "cancelled", view.Status)

		rec = s.Request(http.MethodGet, "/api/bookings/"+id+"/logs", token, nil)
		require.Equal(s.T(), http.StatusOK, rec.Code)
		var logs []struct {
			Action string `json:"action"`
		}
		require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &logs))
		require.Len(s.T(), logs, 2)
		require.Equal(s.T(), "created", logs[0].Action)
		require.Equal(s.T(), "cancelled", logs[1].Action)
	})

	s.Run("update changes task name and end time", func() {
		token := s.Login(dbtest.StandardEmail)
		start := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

		id, code, body := s.createBooking(token, dbtest.ResourceA100ID, 16, start, start.Add(2*time.Hour))
		require.Equal(s.T(), http.StatusCreated, code, body)

		newEnd := start.Add(4 * time.Hour)
		rec := s.Request(http.MethodPatch, "/api/bookings/"+id, token, map[string]any{
			"task_name": "renamed run",
			"end_time":  newEnd,
		})
		require.Equal(s.T(), http.StatusNoContent, rec.Code, rec.Body.String())

		view, _ := s.getBooking(token, id)
		require.Equal(s.T(), "renamed run", view.TaskName)
		require.True(s.T(), view.EndTime.Equal(newEnd))
		require.True(s.T(), view.OriginalEndTime.Equal(start.Add(2*time.Hour)), "original end records the first plan")
	})

	s.Run("another user's booking is invisible", func() {
		ownerToken := s.Login(dbtest.StandardEmail)
		start := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

		id, code, body := s.createBooking(ownerToken, dbtest.ResourceA100ID, 16, start, start.Add(2*time.Hour))
		require.Equal(s.T(), http.StatusCreated, code, body)

		otherToken := s.Login(dbtest.PremiumEmail)
		_, code = s.getBooking(otherToken, id)
		require.Equal(s.T(), http.StatusNotFound, code)

		adminToken := s.Login(dbtest.AdminEmail)
		_, code = s.getBooking(adminToken, id)
		require.Equal(s.T(), http.StatusOK, code, "admin sees all bookings")
	})
}

func (s *BookingSuite) TestAdmissionControl() {
	s.Run("overlapping demand beyond capacity is rejected", func() {
		token := s.Login(dbtest.StandardEmail)
		start := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
		end := start.Add(2 * time.Hour)

		_, code, body := s.createBooking(token, dbtest.ResourceA100ID, 80, start, end)
		require.Equal(s.T(), http.StatusCreated, code, body)

		otherToken := s.Login(dbtest.PremiumEmail)
		rec := s.Request(http.MethodPost, "/api/bookings", otherToken, map[string]any{
			"resource_id": dbtest.ResourceA100ID,
			"task_name":   "squeezed out",
			"memory_gb":   1,
			"start_time":  start,
			"end_time":    end,
		})
		require.Equal(s.T(), http.StatusConflict, rec.Code)

		var resp struct {
			Detail struct {
				RequestedGb int32 `json:"requestedGb"`
				AvailableGb int32 `json:"availableGb"`
				TotalGb     int32 `json:"totalGb"`
			} `json:"detail"`
		}
		require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(s.T(), int32(1), resp.Detail.RequestedGb)
		require.Equal(s.T(), int32(0), resp.Detail.AvailableGb)
		require.Equal(s.T(), int32(80), resp.Detail.TotalGb)
	})

	s.Run("back to back bookings share the boundary", func() {
		token := s.Login(dbtest.StandardEmail)
		start := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
		boundary := start.Add(2 * time.Hour)

		_, code, body := s.createBooking(token, dbtest.ResourceA100ID, 80, start, boundary)
		require.Equal(s.T(), http.StatusCreated, code, body)

		otherToken := s.Login(dbtest.PremiumEmail)
		_, code, body = s.createBooking(otherToken, dbtest.ResourceA100ID, 80, boundary, boundary.Add(2*time.Hour))
		require.Equal(s.T(), http.StatusCreated, code, body)
	})

	s.Run("group duration limit is enforced", func() {
		token := s.Login(dbtest.StandardEmail)
		start := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

		_, code, _ := s.createBooking(token, dbtest.ResourceA100ID, 16, start, start.Add(9*time.Hour))
		require.Equal(s.T(), http.StatusForbidden, code, "standard cap is 8h")

		premiumToken := s.Login(dbtest.PremiumEmail)
		_, code, body := s.createBooking(premiumToken, dbtest.ResourceA100ID, 16, start, start.Add(9*time.Hour))
		require.Equal(s.T(), http.StatusCreated, code, body)
	})

	s.Run("inactive resource refuses bookings", func() {
		token := s.Login(dbtest.StandardEmail)
		start := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

		_, code, _ := s.createBooking(token, dbtest.ResourceRetiredID, 16, start, start.Add(2*time.Hour))
		require.Equal(s.T(), http.StatusConflict, code)
	})

	s.Run("concurrent creates admit exactly the capacity", func() {
		token := s.Login(dbtest.PremiumEmail)
		start := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
		end := start.Add(2 * time.Hour)

		// 80GB total, 30GB each: exactly two of the contenders fit.
		const contenders = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
			refused int
		)
		for range contenders {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, code, _ := s.createBooking(token, dbtest.ResourceA100ID, 30, start, end)
				mu.Lock()
				defer mu.Unlock()
				switch code {
				case http.StatusCreated:
					created++
				case http.StatusConflict:
					refused++
				}
			}()
		}
		wg.Wait()

		require.Equal(s.T(), 2, created, "exactly two 30GB bookings fit in 80GB")
		require.Equal(s.T(), contenders-2, refused)
	})
}

func (s *BookingSuite) TestSweep() {
	s.Run("activates and completes due bookings", func() {
		now := time.Now().UTC()

		// Seed directly: the API refuses windows in the past.
		dueActive := uuid.New()
		dueComplete := uuid.New()
		ctx := context.Background()
		for _, row := range []struct {
			id         uuid.UUID
			start, end time.Time
			status     string
		}{
			{dueActive, now.Add(-10 * time.Minute), now.Add(time.Hour), "upcoming"},
			{dueComplete, now.Add(-2 * time.Hour), now.Add(-time.Minute), "active"},
		} {
			_, err := s.DB.Exec(ctx, `
				INSERT INTO bookings (id, user_id, resource_id, task_name, memory_gb,
					start_time, end_time, original_end_time, status)
				VALUES ($1, $2, $3, 'seeded sweep target', 8, $4, $5, $5, $6)`,
				row.id, dbtest.StandardUserID, dbtest.ResourceH100ID, row.start, row.end, row.status)
			require.NoError(s.T(), err)
		}

		adminToken := s.Login(dbtest.AdminEmail)
		rec := s.Request(http.MethodPost, "/api/bookings/sweep", adminToken, nil)
		require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())

		var result struct {
			Activated int `json:"activated"`
			Completed int `json:"completed"`
			Failed    int `json:"failed"`
		}
		require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &result))
		require.Equal(s.T(), 1, result.Activated)
		require.Equal(s.T(), 1, result.Completed)
		require.Equal(s.T(), 0, result.Failed)

		view, code := s.getBooking(adminToken, dueActive.String())
		require.Equal(s.T(), http.StatusOK, code)
		require.Equal(s.T(), "active", view.Status)

		view, code = s.getBooking(adminToken, dueComplete.String())
		require.Equal(s.T(), http.StatusOK, code)
		require.Equal(s.T(), "completed", view.Status)
	})

	s.Run("sweep endpoint is admin only", func() {
		token := s.Login(dbtest.StandardEmail)
		rec := s.Request(http.MethodPost, "/api/bookings/sweep", token, nil)
		require.Equal(s.T(), http.StatusForbidden, rec.Code)
	})
}

func (s *BookingSuite) TestStatusSummary() {
	s.Run("counts bookings per status", func() {
		token := s.Login(dbtest.PremiumEmail)
		start := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

		for i := range 3 {
			slot := start.Add(time.Duration(i*3) * time.Hour)
			_, code, body := s.createBooking(token, dbtest.ResourceA100ID, 16, slot, slot.Add(2*time.Hour))
			require.Equal(s.T(), http.StatusCreated, code, body)
		}

		rec := s.Request(http.MethodGet, "/api/bookings/status-summary", token, nil)
		require.Equal(s.T(), http.StatusOK, rec.Code)

		var resp struct {
			Upcoming  int64 `json:"upcoming"`
			Active    int64 `json:"active"`
			Completed int64 `json:"completed"`
		}
		require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(s.T(), int64(3), resp.Upcoming)
		require.Equal(s.T(), int64(0), resp.Active)
	})
}

func (s *BookingSuite) TestCalendar() {
	s.Run("materializes slots over an explicit window", func() {
		token := s.Login(dbtest.StandardEmail)
		start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
		end := start.Add(4 * time.Hour)

		_, code, body := s.createBooking(token, dbtest.ResourceA100ID, 16, start, start.Add(2*time.Hour))
		require.Equal(s.T(), http.StatusCreated, code, body)

		url := fmt.Sprintf("/api/bookings/calendar?resource_id=%s&start=%s&end=%s",
			dbtest.ResourceA100ID,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
		rec := s.Request(http.MethodGet, url, token, nil)
		require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Slots []struct {
				StartTime   time.Time `json:"startTime"`
				IsAvailable bool      `json:"isAvailable"`
			} `json:"slots"`
		}
		require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(s.T(), resp.Slots, 4)
		require.False(s.T(), resp.Slots[0].IsAvailable)
		require.False(s.T(), resp.Slots[1].IsAvailable)
		require.True(s.T(), resp.Slots[2].IsAvailable)
		require.True(s.T(), resp.Slots[3].IsAvailable)
	})

	s.Run("defaults to the current week", func() {
		token := s.Login(dbtest.StandardEmail)

		rec := s.Request(http.MethodGet, "/api/bookings/calendar", token, nil)
		require.Equal(s.T(), http.StatusOK, rec.Code)

		var resp struct {
			Slots []json.RawMessage `json:"slots"`
		}
		require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(s.T(), resp.Slots, 7*24, "a week of hourly slots")
	})
}
