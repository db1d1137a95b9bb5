package gateway

import (
	"net/http"

	"freshbonds/backend/internal/api"
)

// Index answers GET /api with a map of the routes the gateway fronts.
func Index(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]any{
		"message": "Fresh Bonds API Gateway",
		"version": "1.0.0",
		"services": map[string]string{
			"users":    "/api/users",
			"products": "/api/products",
			"payment":  "/api/payment",
		},
		"endpoints": map[string]string{
			"health":          "/health",
			"userLogin":       "/api/users/login",
			"userProfile":     "/api/users/profile",
			"products":        "/api/products",
			"productById":     "/api/products/{id}",
			"paymentInitiate": "/api/payment/initiate",
			"paymentCallback": "/api/payment/callback",
		},
	})
}
