package api

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
)

const API_ROOT_ROUTE_NAME = "api-root"

// ViewSet bundles the standard actions of one collection resource.
type ViewSet interface {
	List(echo.Context) error
	Create(echo.Context) error
	Retrieve(echo.Context) error
	Update(echo.Context) error
	PartialUpdate(echo.Context) error
	Destroy(echo.Context) error
}

type registration struct {
	prefix   string
	basename string
}

// Router generates list and detail routes for registered viewsets.
type Router struct {
	sync.Mutex

	echo          *echo.Echo
	registrations []registration
}

func NewRouter(e *echo.Echo) *Router {
	return &Router{
		echo:          e,
		registrations: make([]registration, 0),
	}
}

// ListPath is the collection path for prefix, e.g. "/api/blocks/".
func ListPath(prefix string) string {
	return "/" + strings.Trim(prefix, "/") + "/"
}

// DetailPath is the single item path for prefix, e.g. "/api/blocks/:id/".
func DetailPath(prefix string) string {
	return ListPath(prefix) + ":id/"
}

// Register adds the list routes (<basename>-list) and the detail routes
// (<basename>-detail) of viewset under prefix.
func (r *Router) Register(prefix string, basename string, viewset ViewSet) {
	r.Lock()
	defer r.Unlock()

	listPath := ListPath(prefix)
	detailPath := DetailPath(prefix)
	listName := basename + "-list"
	detailName := basename + "-detail"

	r.echo.GET(listPath, viewset.List).Name = listName
	r.echo.POST(listPath, viewset.Create).Name = listName

	r.echo.GET(detailPath, viewset.Retrieve).Name = detailName
	r.echo.PUT(detailPath, viewset.Update).Name = detailName
	r.echo.PATCH(detailPath, viewset.PartialUpdate).Name = detailName
	r.echo.DELETE(detailPath, viewset.Destroy).Name = detailName

	r.registrations = append(r.registrations, registration{
		prefix:   strings.Trim(prefix, "/"),
		basename: basename,
	})
}

// RegisterAPIRoot serves the index of registered resources at "/".
func (r *Router) RegisterAPIRoot() {
	r.echo.GET("/", r.APIRootHandler).Name = API_ROOT_ROUTE_NAME
}

func (r *Router) GetPrefixes() []string {
	r.Lock()
	defer r.Unlock()

	prefixes := make([]string, 0, len(r.registrations))
	for _, reg := range r.registrations {
		prefixes = append(prefixes, reg.prefix)
	}

	return prefixes
}

// @Summary API root
// @Description Maps every registered resource prefix to its absolute list URL.
// @Tags root
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (r *Router) APIRootHandler(c echo.Context) error {
	r.Lock()
	defer r.Unlock()

	root := make(map[string]string, len(r.registrations))
	for _, reg := range r.registrations {
		root[reg.prefix] = fmt.Sprintf(
			"%s://%s%s",
			c.Scheme(),
			c.Request().Host,
			r.echo.Reverse(reg.basename+"-list"),
		)
	}

	return c.JSON(http.StatusOK, root)
}
