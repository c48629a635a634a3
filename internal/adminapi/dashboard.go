package adminapi

import (
	"net/http"
	"time"

	"github.com/ablewear/ablewear/internal/domain"
	"github.com/ablewear/ablewear/internal/webserver"
	"github.com/ablewear/ablewear/pkg/metrics"
	"github.com/go-gota/gota/dataframe"
	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"
)

type dailySale struct {
	Day    string  `dataframe:"day"`
	Amount float64 `dataframe:"amount"`
}

func registerDashboardRoutes() {
	webserver.AdminGET("/api/dashboard/overview", dashboardOverview)
	webserver.AdminGET("/api/dashboard/sales", dashboardSales)
	webserver.AdminGET("/api/dashboard/system", dashboardSystem)
}

// dashboardOverview returns headline counts plus order value stats.
func dashboardOverview(c echo.Context) error {
	db := GetDB(c)

	var customers, products, orders, pendingDesigns int64
	db.Model(&domain.Customer{}).Count(&customers)
	db.Model(&domain.Product{}).Count(&products)
	db.Model(&domain.Order{}).Count(&orders)
	db.Model(&domain.DesignRequest{}).Where("status = ?", domain.DesignStatusPending).Count(&pendingDesigns)

	var totals []float64
	if err := db.Model(&domain.Order{}).Pluck("total_amount", &totals).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query order totals", err.Error())
	}

	var revenue, mean, median float64
	if len(totals) > 0 {
		revenue, _ = stats.Sum(totals)
		mean, _ = stats.Mean(totals)
		median, _ = stats.Median(totals)
	}

	return ok(c, map[string]interface{}{
		"customers":       customers,
		"products":        products,
		"orders":          orders,
		"pending_designs": pendingDesigns,
		"revenue":         revenue,
		"order_mean":      mean,
		"order_median":    median,
	})
}

// dashboardSales aggregates order totals per day over the last 30
// days.
func dashboardSales(c echo.Context) error {
	since := time.Now().AddDate(0, 0, -30)

	var rows []domain.Order
	if err := GetDB(c).Where("created_at >= ?", since).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	if len(rows) == 0 {
		return ok(c, []interface{}{})
	}

	sales := make([]dailySale, 0, len(rows))
	for _, o := range rows {
		sales = append(sales, dailySale{
			Day:    o.CreatedAt.Format("2006-01-02"),
			Amount: o.TotalAmount,
		})
	}

	df := dataframe.LoadStructs(sales)
	agg := df.GroupBy("day").Aggregation(
		[]dataframe.AggregationType{dataframe.Aggregation_SUM, dataframe.Aggregation_COUNT},
		[]string{"amount", "amount"},
	)
	agg = agg.Arrange(dataframe.Sort("day"))

	return ok(c, agg.Maps())
}

// dashboardSystem returns the recent system and order metric series
// collected by the scheduler.
func dashboardSystem(c echo.Context) error {
	end := time.Now().Unix()
	start := time.Now().Add(-1 * time.Hour).Unix()

	series := map[string]interface{}{}
	for _, name := range []string{
		metrics.MetricSystemCPUUsage,
		metrics.MetricSystemMemUsage,
		metrics.MetricProcessCPUUsage,
		metrics.MetricProcessMemUsage,
		metrics.MetricOrderPlaced,
		metrics.MetricOrderFailed,
		metrics.MetricSuggestRequest,
	} {
		points, err := metrics.Select(name, start, end)
		if err != nil {
			series[name] = []interface{}{}
			continue
		}
		series[name] = points
	}
	return ok(c, series)
}
