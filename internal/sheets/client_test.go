package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumAmounts(t *testing.T) {
	csvData := "Donor,Amount,Currency\nAcme,\"$1,250.50\",usd\nGlobex,300,\nBad row,n/a,USD\nShort\n"
	total, err := SumAmounts(strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1550.5, total.Total)
	assert.Equal(t, 2, total.Rows)
	assert.Equal(t, "USD", total.Currency)
}

func TestSumAmounts_MissingColumn(t *testing.T) {
	_, err := SumAmounts(strings.NewReader("donor,value\nx,1\n"))
	assert.Error(t, err)
}

func TestFetchTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("amount\n10\n20.25\n"))
	}))
	defer srv.Close()

	total, err := NewClient(srv.URL).FetchTotal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30.25, total.Total)
	assert.Equal(t, 2, total.Rows)
	assert.False(t, total.FetchedAt.IsZero())
}

func TestFetchTotal_Errors(t *testing.T) {
	_, err := NewClient("").FetchTotal(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	_, err = NewClient(srv.URL).FetchTotal(context.Background())
	assert.Error(t, err)
}
