package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"egovlaw-backend/models"
	"egovlaw-backend/service"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// LawHandler serves the stateless law endpoints
type LawHandler struct {
	lawService *service.LawService
}

// NewLawHandler creates a new law handler
func NewLawHandler(lawService *service.LawService) *LawHandler {
	return &LawHandler{lawService: lawService}
}

type categoryView struct {
	Code  models.LawCategory `json:"code"`
	Label string             `json:"label"`
}

// ListCategories handles GET /api/categories
func (h *LawHandler) ListCategories(c *gin.Context) {
	codes := append([]models.LawCategory{models.CategoryAll}, models.SpecificCategories...)
	out := make([]categoryView, 0, len(codes))
	for _, code := range codes {
		out = append(out, categoryView{Code: code, Label: code.Label()})
	}
	respondOK(c, http.StatusOK, out)
}

// SearchLaws handles GET /api/laws
func (h *LawHandler) SearchLaws(c *gin.Context) {
	req, err := searchRequestFromQuery(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	var sort *models.SortState
	if key := c.Query("sort"); key != "" {
		sort = &models.SortState{Key: models.SortKey(key), Ascending: key != string(models.SortByDate)}
		if asc := c.Query("asc"); asc != "" {
			ascending, err := strconv.ParseBool(asc)
			if err != nil {
				respondError(c, http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("invalid asc value %q", asc))
				return
			}
			sort.Ascending = ascending
		}
	}

	result, err := h.lawService.Search(c.Request.Context(), req, sort)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

func searchRequestFromQuery(c *gin.Context) (service.SearchRequest, error) {
	category := c.DefaultQuery("category", string(models.CategoryAll))
	from, err := parseDate(c.Query("from"))
	if err != nil {
		return service.SearchRequest{}, err
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return service.SearchRequest{}, err
	}
	return service.SearchRequest{
		Category: models.LawCategory(category),
		Filters: models.SearchFilters{
			NameQuery:   c.Query("name"),
			NumberQuery: c.Query("number"),
			Keyword:     c.Query("keyword"),
			DateFrom:    from,
			DateTo:      to,
		},
	}, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}
