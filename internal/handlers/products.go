package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agrienergy/agri-produce/internal/middleware"
	"github.com/agrienergy/agri-produce/internal/models"
	"github.com/agrienergy/agri-produce/internal/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const dateLayout = "2006-01-02"

type newProductForm struct {
	Name           string `form:"name" binding:"required,max=100"`
	Category       string `form:"category" binding:"required,max=50"`
	ProductionDate string `form:"production_date" binding:"required"`
}

func (h *Handler) ListMyProducts(c *gin.Context) {
	user := middleware.CurrentUser(c)
	render(c, http.StatusOK, "products_mine.html", gin.H{
		"Title":    "My products",
		"Products": h.products.GetProductsByFarmer(c.Request.Context(), user.ID),
	})
}

func (h *Handler) ShowNewProduct(c *gin.Context) {
	renderNewProduct(c, http.StatusOK, newProductForm{ProductionDate: time.Now().Format(dateLayout)}, nil)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var form newProductForm
	if err := c.ShouldBind(&form); err != nil {
		renderNewProduct(c, http.StatusBadRequest, form, bindingMessages(err))
		return
	}

	produced, err := time.Parse(dateLayout, strings.TrimSpace(form.ProductionDate))
	if err != nil {
		renderNewProduct(c, http.StatusBadRequest, form, []string{"The Production date field must be a date (YYYY-MM-DD)."})
		return
	}

	user := middleware.CurrentUser(c)
	product := &models.Product{
		Name:           form.Name,
		Category:       form.Category,
		ProductionDate: produced,
		FarmerID:       user.ID,
	}
	if err := h.products.AddProduct(c.Request.Context(), product); err != nil {
		if messages, ok := serviceMessages(err); ok {
			renderNewProduct(c, http.StatusBadRequest, form, messages)
			return
		}
		renderNewProduct(c, http.StatusInternalServerError, form, []string{"The product could not be saved. Please try again."})
		return
	}

	h.recordAudit(c.Request.Context(), user.ID, "product", fmt.Sprint(product.ID), "create",
		fmt.Sprintf("Added %s (%s)", product.Name, product.Category))

	middleware.AddFlash(c, "Product added successfully!")
	c.Redirect(http.StatusFound, "/farmer/products")
}

func renderNewProduct(c *gin.Context, status int, form newProductForm, errs []string) {
	render(c, status, "product_new.html", gin.H{
		"Title":          "Add product",
		"Errors":         errs,
		"Name":           form.Name,
		"Category":       form.Category,
		"ProductionDate": form.ProductionDate,
	})
}

type productFilterQuery struct {
	FarmerID  string `form:"farmer_id"`
	Category  string `form:"category"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

func (h *Handler) ListAllProducts(c *gin.Context) {
	ctx := c.Request.Context()

	var q productFilterQuery
	_ = c.ShouldBindQuery(&q)

	var errs []string
	filter := services.ProductFilter{FarmerID: q.FarmerID, Category: q.Category}
	if d, ok := parseFilterDate(q.StartDate, "start", &errs); ok {
		filter.StartDate = &d
	}
	if d, ok := parseFilterDate(q.EndDate, "end", &errs); ok {
		filter.EndDate = &d
	}

	farmers, err := h.users.GetUsersInRole(ctx, models.RoleFarmer)
	if err != nil {
		h.log.Error().Err(err).Msg("list farmers for filter")
		farmers = []models.User{}
	}
	sortByFullName(farmers)

	render(c, http.StatusOK, "products_all.html", gin.H{
		"Title":      "All products",
		"Errors":     errs,
		"Products":   h.products.GetFilteredProducts(ctx, filter),
		"Farmers":    farmers,
		"Categories": h.products.GetDistinctCategories(ctx),
		"Filter":     q,
	})
}

func parseFilterDate(raw, which string, errs *[]string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("Ignoring %s date %q: use YYYY-MM-DD.", which, raw))
		return time.Time{}, false
	}
	return d, true
}

func sortByFullName(users []models.User) {
	col := collate.New(language.English, collate.IgnoreCase)
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.FullName
	}
	col.Sort(byName{users: users, names: names})
}

type byName struct {
	users []models.User
	names []string
}

func (b byName) Len() int { return len(b.users) }

func (b byName) Swap(i, j int) {
	b.users[i], b.users[j] = b.users[j], b.users[i]
	b.names[i], b.names[j] = b.names[j], b.names[i]
}

func (b byName) Bytes(i int) []byte { return []byte(b.names[i]) }
