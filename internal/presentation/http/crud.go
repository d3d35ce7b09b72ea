package httppresentation

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Zhima-Mochi/minishop-orders/internal/application/account"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/paging"
	domuser "github.com/Zhima-Mochi/minishop-orders/internal/domain/user"
)

type createUserRequest struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Role     string          `json:"role"`
	Balance  decimal.Decimal `json:"balance"`
}

type updateUserRequest struct {
	Username string           `json:"username"`
	Password string           `json:"password"`
	Role     string           `json:"role"`
	Balance  *decimal.Decimal `json:"balance,omitempty"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

type productRequest struct {
	Name       string          `json:"name"`
	StockCount int             `json:"stock_count"`
	Price      decimal.Decimal `json:"price"`
	CategoryID int64           `json:"category_id"`
}

func (r productRequest) input() catalog.ProductInput {
	return catalog.ProductInput{Name: r.Name, StockCount: r.StockCount, Price: r.Price, CategoryID: r.CategoryID}
}

func pageRequest(r *http.Request) (paging.Request, error) {
	page, err := queryIntDefault(r, "page", 0)
	if err != nil {
		return paging.Request{}, err
	}
	size, err := queryIntDefault(r, "size", paging.DefaultSize)
	if err != nil {
		return paging.Request{}, err
	}
	return paging.Request{Page: page, Size: size}, nil
}

// actingRole reads the caller's role from the role query parameter.
func actingRole(r *http.Request) (domuser.Role, error) {
	return domuser.ParseRole(r.URL.Query().Get("role"))
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.Accounts.CreateUser(r.Context(), account.CreateInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		Balance:  req.Balance,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Accounts.ListUsers(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handlePageUsers(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.Accounts.PageUsers(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.Accounts.GetUser(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.Accounts.UpdateUser(r.Context(), id, account.UpdateInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		Balance:  req.Balance,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if err := h.deps.Accounts.DeleteUser(r.Context(), id); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	role, err := actingRole(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.Catalog.CreateCategory(r.Context(), req.Name, role)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Catalog.ListCategories(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handlePageCategories(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.Catalog.PageCategories(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.Catalog.GetCategory(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	role, err := actingRole(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.Catalog.UpdateCategory(r.Context(), id, req.Name, role)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	role, err := actingRole(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if err := h.deps.Catalog.DeleteCategory(r.Context(), id, role); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	role, err := actingRole(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.Catalog.CreateProduct(r.Context(), req.input(), role)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Catalog.ListProducts(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handlePageProducts(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.Catalog.PageProducts(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	role, err := actingRole(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	out, err := h.deps.Catalog.UpdateProduct(r.Context(), id, req.input(), role)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	role, err := actingRole(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if err := h.deps.Catalog.DeleteProduct(r.Context(), id, role); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
