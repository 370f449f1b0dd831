package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mart_inventory/internal/database"
	"mart_inventory/internal/inventory"
	"mart_inventory/internal/models"
	"mart_inventory/internal/router"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"MART_DATA_FILE", "MART_API_ENDPOINT", "MART_SHARED_SECRET", "MART_SAVE_DELAY",
		"MART_HEALTH_TIMEOUT", "MART_FETCH_TIMEOUT", "MART_PUSH_TIMEOUT", "LOG_LEVEL", "LOG_FILE"} {
		t.Setenv(k, "")
	}
}

// run executes martctl against dataFile and returns stdout.
func run(t *testing.T, dataFile string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--data", dataFile}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, dataFile string, args ...string) string {
	t.Helper()
	out, err := run(t, dataFile, args...)
	require.NoError(t, err, "martctl %s", strings.Join(args, " "))
	return out
}

func decodeJSON[T any](t *testing.T, raw string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(raw), &v), raw)
	return v
}

func newDataFile(t *testing.T) string {
	isolateEnv(t)
	return filepath.Join(t.TempDir(), "mart.db")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"status", "categories", "products", "sell", "adjust", "report", "transactions",
		"backup", "restore", "export-csv", "settings", "sync", "monitor"} {
		found, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}
	for _, flag := range []string{"config", "data", "endpoint", "pin", "format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestInvalidFormatIsRejected(t *testing.T) {
	_, err := run(t, newDataFile(t), "--format", "xml", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestStatusOnFreshStore(t *testing.T) {
	data := newDataFile(t)
	out := mustRun(t, data, "--format", "json", "status")

	view := decodeJSON[statusView](t, out)
	assert.Equal(t, "MART INVENTORY", view.Store)
	assert.Equal(t, data, view.DataFile)
	assert.Equal(t, "local-only", view.Remote)
	assert.Equal(t, len(models.DefaultCategories), view.Categories)
	assert.Zero(t, view.Products)
	assert.False(t, view.Locked)
}

func TestCategoriesAddListRemove(t *testing.T) {
	data := newDataFile(t)
	assert.Contains(t, mustRun(t, data, "categories", "add", "  Frozen "), `Added category "Frozen"`)

	cats := decodeJSON[[]string](t, mustRun(t, data, "--format", "json", "categories", "ls"))
	assert.Contains(t, cats, "Frozen")

	_, err := run(t, data, "categories", "add", "Frozen")
	assert.ErrorIs(t, err, inventory.ErrCategoryExists)

	mustRun(t, data, "categories", "rm", "Frozen")
	cats = decodeJSON[[]string](t, mustRun(t, data, "--format", "json", "categories", "ls"))
	assert.NotContains(t, cats, "Frozen")
}

func TestAddProductSellAndLog(t *testing.T) {
	data := newDataFile(t)
	p := decodeJSON[models.Product](t, mustRun(t, data, "--format", "json",
		"products", "add", "--name", "Milk", "--category", "Dairy", "--price", "2.5", "--stock", "10", "--reorder", "8"))
	require.NotEmpty(t, p.ID)

	out := mustRun(t, data, "sell", p.ID+"=3")
	assert.Contains(t, out, "Checkout SALE-")
	assert.Contains(t, out, "Total: Rs. 7.50")

	products := decodeJSON[[]models.Product](t, mustRun(t, data, "--format", "json", "products", "ls"))
	require.Len(t, products, 1)
	assert.Equal(t, 7, products[0].Stock)
	assert.Equal(t, 3, products[0].UnitsSold)

	low := decodeJSON[[]models.Product](t, mustRun(t, data, "--format", "json", "products", "ls", "--low"))
	assert.Len(t, low, 1)

	sales := decodeJSON[[]models.Transaction](t, mustRun(t, data, "--format", "json", "transactions", "--type", "sale"))
	require.Len(t, sales, 1)
	assert.Equal(t, 3, sales[0].Quantity)
	assert.InDelta(t, 7.5, sales[0].TotalValue(), 1e-9)

	all := decodeJSON[[]models.Transaction](t, mustRun(t, data, "--format", "json", "log"))
	require.Len(t, all, 2)
	assert.Equal(t, models.TransactionSale, all[0].Type)
	assert.Equal(t, models.TransactionStockAdd, all[1].Type)

	_, err := run(t, data, "sell", p.ID+"=8")
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
}

func TestAdjustAndEditStock(t *testing.T) {
	data := newDataFile(t)
	p := decodeJSON[models.Product](t, mustRun(t, data, "--format", "json",
		"products", "add", "--name", "Bread", "--price", "1", "--stock", "5"))
	assert.Equal(t, "Uncategorized", p.Category)

	assert.Contains(t, mustRun(t, data, "adjust", "--reason", "damaged", p.ID, "--", "-2"), "Bread stock is now 3")
	assert.Contains(t, mustRun(t, data, "products", "edit", p.ID, "--stock", "12"), "stock 12")

	adjusts := decodeJSON[[]models.Transaction](t, mustRun(t, data, "--format", "json", "transactions", "--type", "STOCK_ADJUST"))
	require.Len(t, adjusts, 2)
	assert.Equal(t, 9, adjusts[0].Quantity)
	assert.Equal(t, 2, adjusts[1].Quantity)

	_, err := run(t, data, "adjust", "missing", "1")
	assert.ErrorIs(t, err, inventory.ErrProductNotFound)
}

func TestPINProtectsMutations(t *testing.T) {
	data := newDataFile(t)
	mustRun(t, data, "settings", "set", "--name", "Corner Mart", "--access-pin", "1234")

	_, err := run(t, data, "categories", "add", "Frozen")
	assert.ErrorIs(t, err, inventory.ErrInvalidPIN)
	_, err = run(t, data, "--pin", "0000", "categories", "add", "Frozen")
	assert.ErrorIs(t, err, inventory.ErrInvalidPIN)
	mustRun(t, data, "--pin", "1234", "categories", "add", "Frozen")

	// Reading stays open; the PIN is only revealed with the right --pin.
	shown := decodeJSON[models.Settings](t, mustRun(t, data, "--format", "json", "settings", "show"))
	assert.Equal(t, "Corner Mart", shown.MartName)
	assert.Equal(t, "(set)", shown.AccessPIN)
	shown = decodeJSON[models.Settings](t, mustRun(t, data, "--format", "json", "--pin", "1234", "settings", "show"))
	assert.Equal(t, "1234", shown.AccessPIN)
}

func TestSettingsRequireEndpointForRemote(t *testing.T) {
	data := newDataFile(t)
	_, err := run(t, data, "settings", "set", "--remote")
	assert.ErrorIs(t, err, inventory.ErrValidation)
}

func TestExportCSVToStdout(t *testing.T) {
	data := newDataFile(t)
	mustRun(t, data, "products", "add", "--name", "Milk, 1L", "--category", "Dairy", "--price", "2.49", "--stock", "20")

	out := mustRun(t, data, "export-csv", "-")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Name,Category,Price,Stock,Sold", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], `,"Milk, 1L",Dairy,2.49,20,0`), lines[1])
}

func TestBackupAndRestore(t *testing.T) {
	data := newDataFile(t)
	mustRun(t, data, "products", "add", "--name", "Milk", "--price", "2", "--stock", "4")
	backup := filepath.Join(t.TempDir(), "backup.json")
	assert.Contains(t, mustRun(t, data, "backup", backup), "Backup written")

	mustRun(t, data, "products", "add", "--name", "Bread", "--price", "1", "--stock", "2")
	assert.Contains(t, mustRun(t, data, "restore", backup), "Restored 1 products, 1 transactions")

	products := decodeJSON[[]models.Product](t, mustRun(t, data, "--format", "json", "products", "ls"))
	require.Len(t, products, 1)
	assert.Equal(t, "Milk", products[0].Name)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"products": {}}`), 0o600))
	_, err := run(t, data, "restore", bad)
	assert.ErrorIs(t, err, inventory.ErrInvalidBackup)
}

func TestReports(t *testing.T) {
	data := newDataFile(t)
	p := decodeJSON[models.Product](t, mustRun(t, data, "--format", "json",
		"products", "add", "--name", "Milk", "--price", "2", "--stock", "10", "--reorder", "2"))
	mustRun(t, data, "sell", p.ID+"=4")

	summary := decodeJSON[models.DashboardSummary](t, mustRun(t, data, "--format", "json", "report", "summary"))
	assert.Equal(t, 1, summary.TotalProducts)

	best := decodeJSON[[]models.SalesReportItem](t, mustRun(t, data, "--format", "json", "report", "best-sellers"))
	require.Len(t, best, 1)
	assert.Equal(t, p.ID, best[0].ProductID)

	low := decodeJSON[[]models.InventoryReportItem](t, mustRun(t, data, "--format", "json", "report", "low-stock"))
	assert.Empty(t, low)
}

func TestSyncWithoutEndpointFails(t *testing.T) {
	data := newDataFile(t)
	_, err := run(t, data, "sync", "push")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	_, err = run(t, data, "sync", "pull")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestSyncUnreachableEndpointFails(t *testing.T) {
	data := newDataFile(t)
	t.Setenv("MART_HEALTH_TIMEOUT", "200ms")
	_, err := run(t, data, "--endpoint", "http://127.0.0.1:1/api", "sync", "push")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func newRemote(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(context.Background(), database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg := prometheus.NewRegistry()
	engine := gin.New()
	router.Setup(engine, db, router.Options{Registerer: reg, Gatherer: reg})

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv
}

func TestSyncPushThenPullOnAnotherTill(t *testing.T) {
	srv := newRemote(t)
	endpoint := srv.URL + "/api"

	first := newDataFile(t)
	mustRun(t, first, "products", "add", "--name", "Milk", "--price", "2", "--stock", "4")
	assert.Contains(t, mustRun(t, first, "--endpoint", endpoint, "sync", "push"), "Pushed 1 products, 1 transactions")

	// Pushing to an empty remote leaves the local data alone.
	kept := decodeJSON[[]models.Product](t, mustRun(t, first, "--format", "json", "products", "ls"))
	require.Len(t, kept, 1)
	assert.Equal(t, "Milk", kept[0].Name)

	second := filepath.Join(t.TempDir(), "till2.db")
	assert.Contains(t, mustRun(t, second, "--endpoint", endpoint, "sync", "pull"), "Pulled 1 products, 1 transactions")

	// The pull was written through, so the second till has the data offline too.
	products := decodeJSON[[]models.Product](t, mustRun(t, second, "--format", "json", "products", "ls"))
	require.Len(t, products, 1)
	assert.Equal(t, "Milk", products[0].Name)

	view := decodeJSON[statusView](t, mustRun(t, second, "--endpoint", endpoint, "--format", "json", "status"))
	assert.Equal(t, "online", view.Remote)
}

func TestOfflineChangesArePushedWhenBackOnline(t *testing.T) {
	srv := newRemote(t)
	endpoint := srv.URL + "/api"

	till := newDataFile(t)
	t.Setenv("MART_HEALTH_TIMEOUT", "200ms")
	mustRun(t, till, "--endpoint", "http://127.0.0.1:1/api",
		"products", "add", "--name", "Tea", "--price", "1", "--stock", "6")

	// The remote is empty, but the unsynced local catalog wins and is pushed.
	products := decodeJSON[[]models.Product](t, mustRun(t, till, "--endpoint", endpoint, "--format", "json", "products", "ls"))
	require.Len(t, products, 1)
	assert.Equal(t, "Tea", products[0].Name)

	other := filepath.Join(t.TempDir(), "till2.db")
	assert.Contains(t, mustRun(t, other, "--endpoint", endpoint, "sync", "pull"), "Pulled 1 products, 1 transactions")
}

func TestMonitorStopsAfterCount(t *testing.T) {
	data := newDataFile(t)
	out := mustRun(t, data, "monitor", "--count", "1")
	assert.Contains(t, out, "local-only")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestParseSaleItems(t *testing.T) {
	items, err := parseSaleItems([]string{"A=2", " B = 1 "})
	require.NoError(t, err)
	assert.Equal(t, []inventory.SaleItem{{ProductID: "A", Quantity: 2}, {ProductID: "B", Quantity: 1}}, items)

	for _, bad := range []string{"A", "=2", "A=two"} {
		_, err := parseSaleItems([]string{bad})
		assert.Error(t, err, bad)
	}
}
