package handlers

import (
	"net/http"
)

// GetDashboardStats returns the 30/30-day comparisons and the sales series.
func (h API) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to fetch dashboard statistics"
	months, err := queryInt(r, "months", h.Dashboard.Limits().DefaultSalesMonths)
	if err != nil {
		writeServiceError(w, r, err, fallback)
		return
	}
	snap, err := h.Dashboard.BuildSnapshot(r.Context(), months)
	if err != nil {
		writeServiceError(w, r, err, fallback)
		return
	}
	writeOK(w, "Dashboard stats retrieved successfully", snap)
}

func (h API) GetRecentOrders(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to fetch recent orders"
	limit, err := queryInt(r, "limit", h.Dashboard.Limits().DefaultRecentOrders)
	if err != nil {
		writeServiceError(w, r, err, fallback)
		return
	}
	orders, err := h.Dashboard.RecentOrders(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err, fallback)
		return
	}
	writeOK(w, "Recent orders retrieved successfully", orders)
}

func (h API) GetSalesAnalytics(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to fetch sales analytics"
	months, err := queryInt(r, "months", h.Dashboard.Limits().DefaultSalesMonths)
	if err != nil {
		writeServiceError(w, r, err, fallback)
		return
	}
	series, err := h.Dashboard.SalesAnalytics(r.Context(), months)
	if err != nil {
		writeServiceError(w, r, err, fallback)
		return
	}
	writeOK(w, "Sales analytics retrieved successfully", series)
}
