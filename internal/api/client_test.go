package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/testutil"
)

const email = "asha@example.com"

func newTestClient(t *testing.T, opts ...Option) (*Client, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend(t)
	client, err := New(backend.URL(), opts...)
	require.NoError(t, err)
	return client, backend
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8000/x", "://nope"} {
		_, err := New(raw)
		assert.Error(t, err, raw)
	}
}

func TestTransactionsKeepServerColumnOrder(t *testing.T) {
	client, backend := newTestClient(t)
	fx := testutil.NewFixtures(1)
	seeded := fx.Transactions(email, 3)
	backend.Do(func(s *testutil.State) { s.Transactions[email] = seeded })

	got, err := client.Transactions(context.Background(), email)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, seeded[0].Keys(), got[0].Keys())
	assert.Equal(t, seeded[1].String(model.ColumnTransactionID), got[1].String(model.ColumnTransactionID))

	req, ok := backend.LastRequest(http.MethodGet, "/get-transactions/")
	require.True(t, ok)
	assert.Equal(t, email, req.Query.Get("user_email"))
	assert.NotEmpty(t, req.RequestID)
}

func TestUpdateTransactionSendsFormFields(t *testing.T) {
	client, backend := newTestClient(t)
	backend.Do(func(s *testutil.State) {
		s.Transactions[email] = []model.Record{
			model.NewRecord(model.ColumnTransactionID, "t-1", model.ColumnCategory, "Rent"),
		}
	})

	err := client.UpdateTransaction(context.Background(), model.TransactionUpdate{
		TransactionID: "t-1", Column: model.ColumnCategory, Value: "Travel",
	})
	require.NoError(t, err)

	backend.Do(func(s *testutil.State) {
		assert.Equal(t, "Travel", s.Transactions[email][0].String(model.ColumnCategory))
	})
}

func TestErrorDetailExtraction(t *testing.T) {
	tests := []struct {
		name     string
		detail   any
		wantMsg  string
		fallback string
	}{
		{name: "string detail", detail: "Transaction not found", wantMsg: "Transaction not found", fallback: "x"},
		{name: "list detail", detail: []map[string]string{{"msg": "field required"}, {"msg": "value is not a valid date"}}, wantMsg: "field required, value is not a valid date", fallback: "x"},
		{name: "no detail", detail: nil, wantMsg: "Failed to fetch summaries.", fallback: "Failed to fetch summaries."},
		{name: "object detail", detail: map[string]string{"code": "E1"}, wantMsg: "generic", fallback: "generic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, backend := newTestClient(t)
			backend.Fail(http.MethodGet, "/get-summaries/", http.StatusBadRequest, tt.detail)

			_, err := client.Summaries(context.Background(), email)
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Equal(t, tt.wantMsg, Message(err, tt.fallback))
		})
	}
}

func TestMessageWithoutAPIError(t *testing.T) {
	assert.Equal(t, "", Message(nil, "fallback"))
	assert.Equal(t, "fallback", Message(errors.New("dial tcp: refused"), "fallback"))
	assert.Equal(t, "Pick a file.", Message(common.NewUserError("Pick a file.", errors.New("empty path")), "fallback"))
	assert.Equal(t, 0, StatusCode(errors.New("x")))
}

func TestCategoryTransactionsSortedByDate(t *testing.T) {
	client, backend := newTestClient(t)
	backend.Do(func(s *testutil.State) {
		s.CategoryTxns["Rent"] = []model.CategoryTransaction{
			{Date: model.NewDate(2024, 3, 1)},
			{Date: model.NewDate(2023, 7, 9)},
			{Date: model.NewDate(2024, 1, 15)},
		}
	})

	got, err := client.CategoryTransactions(context.Background(), email, model.AllBanks, "Rent")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2023-07-09", got[0].Date.String())
	assert.Equal(t, "2024-01-15", got[1].Date.String())
	assert.Equal(t, "2024-03-01", got[2].Date.String())

	req, _ := backend.LastRequest(http.MethodGet, "/get-transaction-for-category/")
	assert.Equal(t, "All", req.Query.Get("bank"))
	assert.Equal(t, "Rent", req.Query.Get("category"))
}

func TestDeleteTransactionsQuery(t *testing.T) {
	client, backend := newTestClient(t)
	backend.Do(func(s *testutil.State) {
		s.Transactions[email] = []model.Record{
			model.NewRecord(model.ColumnTransactionID, "1", model.ColumnBank, "HDFC Bank", model.ColumnDate, "2024-02-10"),
			model.NewRecord(model.ColumnTransactionID, "2", model.ColumnBank, "HDFC Bank", model.ColumnDate, "2024-05-10"),
		}
	})

	msg, err := client.DeleteTransactions(context.Background(), model.DeleteRange{
		UserEmail: email,
		Bank:      "HDFC Bank",
		StartDate: model.NewDate(2024, 1, 1),
		EndDate:   model.NewDate(2024, 3, 31),
	})
	require.NoError(t, err)
	assert.Equal(t, "Deleted 1 transactions", msg.Message)

	req, _ := backend.LastRequest(http.MethodDelete, "/delete-transactions/")
	assert.Equal(t, "2024-01-01", req.Query.Get("start_date"))
	assert.Equal(t, "2024-03-31", req.Query.Get("end_date"))
}

func TestCreateUserToleratesExisting(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	created, err := client.CreateUser(ctx, "Asha", email)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = client.CreateUser(ctx, "Asha", email)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestCreateUserOtherFailures(t *testing.T) {
	client, backend := newTestClient(t)
	backend.Fail(http.MethodPost, "/create-user/", http.StatusBadRequest, "Invalid email")

	_, err := client.CreateUser(context.Background(), "Asha", email)
	assert.Error(t, err)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

var minimalPDF = []byte("%PDF-1.4\n1 0 obj<<>>endobj\ntrailer<<>>\n%%EOF\n")

func TestCheckStatementFile(t *testing.T) {
	assert.NoError(t, CheckStatementFile(writeFile(t, "statement.pdf", minimalPDF)))

	err := CheckStatementFile(writeFile(t, "statement.csv", []byte("date,amount\n2024-01-01,10\n")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnsupportedFile))
	assert.Equal(t, UnsupportedFileMessage, common.UserMessage(err))
}

func TestUploadStatement(t *testing.T) {
	client, backend := newTestClient(t)
	path := writeFile(t, "hdfc.pdf", minimalPDF)

	var progress strings.Builder
	msg, err := client.UploadStatement(context.Background(), model.StatementUpload{
		UserEmail: email, Bank: "HDFC Bank", Path: path,
	}, &progress)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.Message)
	assert.Contains(t, progress.String(), "%PDF-1.4")

	backend.Do(func(s *testutil.State) {
		require.Len(t, s.Uploads, 1)
		assert.Equal(t, "hdfc.pdf", s.Uploads[0].Filename)
		assert.Equal(t, "HDFC Bank", s.Uploads[0].Bank)
	})
}

func TestUploadRejectsBeforeRequest(t *testing.T) {
	client, backend := newTestClient(t)
	path := writeFile(t, "notes.txt", []byte("just some text"))

	_, err := client.UploadStatement(context.Background(), model.StatementUpload{
		UserEmail: email, Bank: "HDFC Bank", Path: path,
	}, nil)
	require.Error(t, err)
	assert.Zero(t, backend.Calls(http.MethodPost, "/upload-transactions/"))
}

func TestSendFeedbackWithAttachment(t *testing.T) {
	client, backend := newTestClient(t)
	path := writeFile(t, "screen.png", []byte("not really a png"))

	require.NoError(t, client.SendFeedback(context.Background(), model.Feedback{
		UserEmail: email, Text: "Charts are great", AttachmentPath: path,
	}))
	require.NoError(t, client.SendFeedback(context.Background(), model.Feedback{
		UserEmail: email, Text: "No attachment",
	}))

	backend.Do(func(s *testutil.State) {
		require.Len(t, s.Feedback, 2)
		assert.Equal(t, "screen.png", s.Feedback[0].Attachment)
		assert.Empty(t, s.Feedback[1].Attachment)
	})
}

func TestEntryServiceCRUD(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	incomes := client.Incomes()
	fx := testutil.NewFixtures(3)

	created, err := incomes.Create(ctx, fx.Income(email, 9))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	list, err := incomes.List(ctx, email, 9)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, created.Value.Equal(list[0].Value))

	created.Value = decimal.NewFromInt(77000)
	updated, err := incomes.Update(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, "77000", updated.Value.String())

	require.NoError(t, incomes.Delete(ctx, email, created.ID))
	list, err = incomes.List(ctx, email, 9)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSavingsCannotBeUpdated(t *testing.T) {
	client, backend := newTestClient(t)
	_, err := client.Savings().Update(context.Background(), 1, model.Saving{})
	require.Error(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, StatusCode(err))
	assert.Empty(t, backend.Requests())
}

func TestExportNetWorth(t *testing.T) {
	client, backend := newTestClient(t)
	backend.Do(func(s *testutil.State) { s.Export = []byte("PK\x03\x04fake") })

	export, err := client.ExportNetWorth(context.Background(), email, 4)
	require.NoError(t, err)
	assert.Equal(t, DefaultExportName, export.Filename)
	assert.Equal(t, testutil.XLSXContentType, export.ContentType)
	assert.Equal(t, []byte("PK\x03\x04fake"), export.Data)
}

func TestMetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	client, backend := newTestClient(t, WithMetrics(metrics))
	backend.Fail(http.MethodGet, "/get-categories/", http.StatusInternalServerError, nil)

	_, err := client.Profiles(context.Background(), email)
	require.NoError(t, err)
	_, err = client.Categories(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.requests.WithLabelValues("get profiles", "2xx")))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.requests.WithLabelValues("get categories", "5xx")))
	assert.Equal(t, 0.0, promtest.ToFloat64(metrics.inflight))
}

func TestTimeoutApplied(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer slow.Close()

	client, err := New(slow.URL, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = client.Categories(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRateLimitHonoursContext(t *testing.T) {
	client, _ := newTestClient(t, WithRateLimit(0.001, 1))
	ctx := context.Background()
	_, err := client.Categories(ctx)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = client.Categories(ctx)
	assert.Error(t, err)
}
