package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/muhammadmueenarif/registeredagentsincapi/internal/repository"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/service/account"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/service/billing"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/service/cart"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/service/formation"
	"github.com/muhammadmueenarif/registeredagentsincapi/internal/service/profile"
)

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodPost:
		var payload account.RegisterInput
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		user, err := r.accounts.Register(req.Context(), payload)
		switch {
		case errors.Is(err, account.ErrMissingFields), errors.Is(err, account.ErrEmailExists):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			r.logger.Error("registration failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to create user account")
			return
		}
		writeSuccess(w, http.StatusOK, map[string]any{
			"message": "User account created successfully",
			"user":    user.ContactCard(),
		})
	case http.MethodGet:
		users, err := r.accounts.ListUsers(req.Context())
		if err != nil {
			r.logger.Error("user listing failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to retrieve users")
			return
		}
		writeSuccess(w, http.StatusOK, map[string]any{
			"users": users,
			"total": len(users),
		})
	default:
		r.methodNotAllowed(w)
	}
}

// handleAuth serves login on POST and the account snapshot on GET. Only
// the GET side requires a bearer token.
func (r *Router) handleAuth(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodPost:
		r.withRateLimit("login", rateLimitLogin, rateWindowDefault, rateLimitKeyIP, r.handleLogin)(w, req)
	case http.MethodGet:
		r.handlerAuthRate("auth", rateLimitUserRead, rateWindowDefault, r.handleAccount)(w, req)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := r.accounts.Login(req.Context(), payload.Email, payload.Password)
	switch {
	case errors.Is(err, account.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, account.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		r.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"message":   "Login successful",
		"user":      user.ContactCard(),
		"loginTime": time.Now().UTC().Format(time.RFC3339),
		"token":     token,
	})
}

func (r *Router) handleAccount(w http.ResponseWriter, req *http.Request) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for account fetch", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	acct := r.formation.Account(req.Context(), info.UserID)
	r.recordUpstreamStatus("auth", acct.Account.Status)
	writeSuccess(w, http.StatusOK, acct)
}

func (r *Router) handleCompanies(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		result := r.formation.ListCompanies(req.Context())
		r.recordUpstreamStatus("companies", result.Status)
		relayResult(w, result)
	case http.MethodPost:
		info, ok := authInfoFromContext(req.Context())
		if !ok {
			writeError(w, http.StatusInternalServerError, "authorization context missing")
			return
		}
		var payload struct {
			Name       string `json:"name"`
			HomeState  string `json:"homeState"`
			EntityType string `json:"entityType"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		result, err := r.formation.CreateCompany(req.Context(), info.UserID, payload.Name, payload.HomeState, payload.EntityType)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		r.recordUpstreamStatus("companies", result.Status)
		relayResult(w, result)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleCompanyByID(w http.ResponseWriter, req *http.Request) {
	companyID := strings.Trim(strings.TrimPrefix(req.URL.Path, "/api/companies/"), "/")
	if companyID == "" || strings.Contains(companyID, "/") {
		r.notFound(w)
		return
	}
	switch req.Method {
	case http.MethodGet:
		result, err := r.formation.GetCompany(req.Context(), companyID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		r.recordUpstreamStatus("company", result.Status)
		relayResult(w, result)
	case http.MethodPatch:
		info, ok := authInfoFromContext(req.Context())
		if !ok {
			writeError(w, http.StatusInternalServerError, "authorization context missing")
			return
		}
		var patch map[string]any
		if err := json.NewDecoder(req.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		result, err := r.formation.UpdateCompany(req.Context(), info.UserID, companyID, patch)
		switch {
		case errors.Is(err, formation.ErrNotOwned):
			writeError(w, http.StatusForbidden, err.Error())
			return
		case errors.Is(err, formation.ErrIDRequired):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			r.logger.Error("company update failed", "error", err, "company_id", companyID)
			writeError(w, http.StatusInternalServerError, "Failed to update company")
			return
		}
		r.recordUpstreamStatus("company", result.Status)
		relayResult(w, result)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handlePayment(w http.ResponseWriter, req *http.Request) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	switch req.Method {
	case http.MethodGet:
		payments, err := r.billing.ListPayments(req.Context(), info.UserID)
		if err != nil {
			r.logger.Error("payment listing failed", "error", err, "user_id", info.UserID)
			writeError(w, http.StatusInternalServerError, "Failed to retrieve payment methods")
			return
		}
		writeSuccess(w, http.StatusOK, map[string]any{
			"message":  fmt.Sprintf("Found %d payment methods for user %s", len(payments), info.Email),
			"payments": payments,
		})
	case http.MethodPost:
		var payload billing.AddPaymentInput
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		payment, err := r.billing.AddPayment(req.Context(), info.UserID, payload)
		switch {
		case errors.Is(err, billing.ErrMissingFields),
			errors.Is(err, billing.ErrInvalidCardNumber),
			errors.Is(err, billing.ErrInvalidSecurityCode),
			errors.Is(err, billing.ErrCardExpired):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			r.logger.Error("payment save failed", "error", err, "user_id", info.UserID)
			writeError(w, http.StatusInternalServerError, "Failed to add payment information")
			return
		}
		writeSuccess(w, http.StatusOK, map[string]any{
			"message": "Payment information added successfully",
			"payment": payment,
			"user":    map[string]string{"id": info.UserID, "email": info.Email},
		})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleAttorney(w http.ResponseWriter, req *http.Request) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	switch req.Method {
	case http.MethodGet:
		attorneys, err := r.profile.ListAttorneys(req.Context(), info.UserID)
		if err != nil {
			r.logger.Error("attorney listing failed", "error", err, "user_id", info.UserID)
			writeError(w, http.StatusInternalServerError, "Failed to retrieve attorney information")
			return
		}
		writeSuccess(w, http.StatusOK, map[string]any{
			"message":   fmt.Sprintf("Found %d attorney records for user %s", len(attorneys), info.Email),
			"attorneys": attorneys,
		})
	case http.MethodPost:
		var payload profile.AttorneyInput
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		attorney, err := r.profile.AddAttorney(req.Context(), info.UserID, payload)
		switch {
		case errors.Is(err, profile.ErrAttorneyContact):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			r.logger.Error("attorney save failed", "error", err, "user_id", info.UserID)
			writeError(w, http.StatusInternalServerError, "Failed to save attorney information")
			return
		}
		writeSuccess(w, http.StatusOK, map[string]any{
			"message":  "Attorney information saved successfully",
			"attorney": attorney,
			"user":     map[string]string{"id": info.UserID, "email": info.Email},
		})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleBusinessIdentity(w http.ResponseWriter, req *http.Request) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	switch req.Method {
	case http.MethodGet:
		identities, err := r.profile.ListBusinessIdentities(req.Context(), info.UserID)
		if err != nil {
			r.logger.Error("business identity listing failed", "error", err, "user_id", info.UserID)
			writeError(w, http.StatusInternalServerError, "Failed to retrieve business identity information")
			return
		}
		writeSuccess(w, http.StatusOK, map[string]any{
			"message":            fmt.Sprintf("Found %d business identity records for user %s", len(identities), info.Email),
			"businessIdentities": identities,
		})
	case http.MethodPost:
		var payload profile.BusinessIdentityInput
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		identity, err := r.profile.AddBusinessIdentity(req.Context(), info.UserID, payload)
		switch {
		case errors.Is(err, profile.ErrShortDomain), errors.Is(err, profile.ErrShortPhone):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			r.logger.Error("business identity save failed", "error", err, "user_id", info.UserID)
			writeError(w, http.StatusInternalServerError, "Failed to save business identity information")
			return
		}
		writeSuccess(w, http.StatusOK, map[string]any{
			"message":          "Business identity information saved successfully",
			"businessIdentity": identity,
			"user":             map[string]string{"id": info.UserID, "email": info.Email},
		})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleCart(w http.ResponseWriter, req *http.Request) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	switch req.Method {
	case http.MethodGet:
		items, summary, err := r.cart.List(req.Context(), info.UserID)
		if err != nil {
			r.logger.Error("cart listing failed", "error", err, "user_id", info.UserID)
			writeError(w, http.StatusInternalServerError, "Failed to retrieve cart")
			return
		}
		writeSuccess(w, http.StatusOK, map[string]any{
			"message": fmt.Sprintf("Found %d items in cart for user %s", len(items), info.Email),
			"cart":    items,
			"summary": summary,
		})
	case http.MethodPost:
		var payload cart.AddInput
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		item, err := r.cart.Add(req.Context(), info.UserID, payload)
		switch {
		case errors.Is(err, cart.ErrMissingFields), errors.Is(err, cart.ErrInvalidPrice):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			r.logger.Error("cart add failed", "error", err, "user_id", info.UserID)
			writeError(w, http.StatusInternalServerError, "Failed to add item to cart")
			return
		}
		writeSuccess(w, http.StatusOK, map[string]any{
			"message":  "Item added to cart successfully",
			"cartItem": item,
			"user":     map[string]string{"id": info.UserID, "email": info.Email},
		})
	case http.MethodPatch:
		var payload struct {
			ItemID   string `json:"itemId"`
			Quantity *int   `json:"quantity"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if payload.ItemID == "" || payload.Quantity == nil {
			writeError(w, http.StatusBadRequest, cart.ErrMissingItem.Error())
			return
		}
		err := r.cart.UpdateQuantity(req.Context(), info.UserID, payload.ItemID, *payload.Quantity)
		switch {
		case errors.Is(err, cart.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "Cart item not found")
			return
		case err != nil:
			r.logger.Error("cart update failed", "error", err, "user_id", info.UserID)
			writeError(w, http.StatusInternalServerError, "Failed to update cart item")
			return
		}
		writeSuccess(w, http.StatusOK, map[string]any{
			"message":     "Cart item updated successfully",
			"itemId":      payload.ItemID,
			"newQuantity": *payload.Quantity,
		})
	case http.MethodDelete:
		var payload struct {
			ItemID string `json:"itemId"`
			Clear  bool   `json:"clear"`
		}
		if req.Body != nil {
			_ = json.NewDecoder(req.Body).Decode(&payload)
		}
		// Clearing the whole cart requires the explicit flag. A missing
		// item id on its own is a client error, never a clear.
		if payload.Clear {
			if err := r.cart.Clear(req.Context(), info.UserID); err != nil {
				r.logger.Error("cart clear failed", "error", err, "user_id", info.UserID)
				writeError(w, http.StatusInternalServerError, "Failed to clear cart")
				return
			}
			writeSuccess(w, http.StatusOK, map[string]any{"message": "Cart cleared successfully"})
			return
		}
		if payload.ItemID == "" {
			writeError(w, http.StatusBadRequest, "Item ID is required")
			return
		}
		err := r.cart.Remove(req.Context(), info.UserID, payload.ItemID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "Cart item not found")
			return
		case err != nil:
			r.logger.Error("cart remove failed", "error", err, "user_id", info.UserID)
			writeError(w, http.StatusInternalServerError, "Failed to remove item from cart")
			return
		}
		writeSuccess(w, http.StatusOK, map[string]any{
			"message": "Item removed from cart successfully",
			"itemId":  payload.ItemID,
		})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleCreatePaymentIntent(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	var payload billing.IntentInput
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	intent, err := r.billing.CreatePaymentIntent(req.Context(), info.UserID, payload)
	switch {
	case errors.Is(err, billing.ErrAmountRequired):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, billing.ErrStripeNotConfigured):
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	case err != nil:
		r.logger.Error("payment intent failed", "error", err, "user_id", info.UserID)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"paymentIntent": intent})
}

func (r *Router) handleServices(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	result := r.formation.Services(req.Context())
	r.recordUpstreamStatus("services", result.Status)
	relayResult(w, result)
}

func (r *Router) handleInvoices(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	result := r.formation.Invoices(req.Context())
	r.recordUpstreamStatus("invoices", result.Status)
	relayResult(w, result)
}

func (r *Router) handlePaymentMethods(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	result := r.formation.PaymentMethods(req.Context())
	r.recordUpstreamStatus("payment-methods", result.Status)
	relayResult(w, result)
}
