package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"blocks-api/api/schemas"
	"blocks-api/types/config"
	"blocks-api/types/dataclasses"
	"blocks-api/types/interfaces"
)

// BlockViewSet bundles the collection and detail handlers of the blocks
// resource. Every handler is a single storage call, except partial and full
// updates which read the row first.
type BlockViewSet struct {
	storage    interfaces.BlockStorage
	serializer *schemas.BlockSerializer
}

func NewBlockViewSet(storage interfaces.BlockStorage) *BlockViewSet {
	return &BlockViewSet{
		storage:    storage,
		serializer: schemas.NewBlockSerializer(),
	}
}

// NotFoundError is the response to an unknown block id or route.
func NotFoundError() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusNotFound, "Not found.")
}

// @Summary List blocks
// @Description Returns every block ordered by ascending number.
// @Tags blocks
// @Produce json
// @Success 200 {array} dataclasses.Block
// @Router /api/blocks/ [get]
func (v *BlockViewSet) List(c echo.Context) error {
	blocks, err := v.storage.List(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, v.serializer.SerializeMany(blocks))
}

// @Summary Create a block
// @Tags blocks
// @Accept json
// @Produce json
// @Success 201 {object} dataclasses.Block
// @Failure 400 {object} map[string][]string
// @Router /api/blocks/ [post]
func (v *BlockViewSet) Create(c echo.Context) error {
	patch, err := v.readBlock(c, false)
	if err != nil {
		return err
	}

	block, err := v.storage.Create(c.Request().Context(), patch.Block())
	if err != nil {
		return err
	}
	config.GetLogger().Debugf("Created block %d with number %d", block.Id, block.Number)

	return c.JSON(http.StatusCreated, v.serializer.Serialize(block))
}

// @Summary Retrieve a block
// @Tags blocks
// @Produce json
// @Param id path int true "Block id"
// @Success 200 {object} dataclasses.Block
// @Failure 404 {object} map[string]string
// @Router /api/blocks/{id}/ [get]
func (v *BlockViewSet) Retrieve(c echo.Context) error {
	block, err := v.getBlock(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, v.serializer.Serialize(block))
}

// Update replaces every writable field; omitted optional fields are reset.
func (v *BlockViewSet) Update(c echo.Context) error {
	return v.update(c, false)
}

// PartialUpdate changes only the submitted fields.
func (v *BlockViewSet) PartialUpdate(c echo.Context) error {
	return v.update(c, true)
}

// @Summary Delete a block
// @Tags blocks
// @Param id path int true "Block id"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/blocks/{id}/ [delete]
func (v *BlockViewSet) Destroy(c echo.Context) error {
	id, err := parseBlockId(c)
	if err != nil {
		return err
	}

	err = v.storage.Delete(c.Request().Context(), id)
	if errors.Is(err, interfaces.ErrBlockNotFound) {
		return NotFoundError()
	}
	if err != nil {
		return err
	}
	config.GetLogger().Debugf("Deleted block %d", id)

	return c.NoContent(http.StatusNoContent)
}

func (v *BlockViewSet) update(c echo.Context, partial bool) error {
	existing, err := v.getBlock(c)
	if err != nil {
		return err
	}

	patch, err := v.readBlock(c, partial)
	if err != nil {
		return err
	}

	block := patch.Block()
	if partial {
		block = patch.Apply(existing)
	}
	block.Id = existing.Id

	updated, err := v.storage.Update(c.Request().Context(), block)
	if errors.Is(err, interfaces.ErrBlockNotFound) {
		// Deleted between the read and the write.
		return NotFoundError()
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, v.serializer.Serialize(updated))
}

func (v *BlockViewSet) getBlock(c echo.Context) (dataclasses.Block, error) {
	id, err := parseBlockId(c)
	if err != nil {
		return dataclasses.Block{}, err
	}

	block, err := v.storage.Get(c.Request().Context(), id)
	if errors.Is(err, interfaces.ErrBlockNotFound) {
		return block, NotFoundError()
	}

	return block, err
}

func (v *BlockViewSet) readBlock(c echo.Context, partial bool) (dataclasses.BlockPatch, error) {
	request := c.Request()

	if contentType := request.Header.Get(echo.HeaderContentType); contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != echo.MIMEApplicationJSON {
			return dataclasses.BlockPatch{}, echo.NewHTTPError(
				http.StatusUnsupportedMediaType,
				fmt.Sprintf("Unsupported media type %q in request.", contentType),
			)
		}
	}

	body, err := io.ReadAll(request.Body)
	if err != nil {
		return dataclasses.BlockPatch{}, err
	}

	return v.serializer.Deserialize(body, partial)
}

// Ids that are not positive integers can never match a row.
func parseBlockId(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, NotFoundError()
	}

	return id, nil
}
