package api

import (
	"errors"
	"net/http"

	"github.com/Aidin1998/crudgate/internal/items"
	"github.com/gin-gonic/gin"
)

var (
	errNotFoundBody = gin.H{"error": "Item not found"}
	errNotObject    = errors.New("request body must be a JSON object")
)

func (s *Server) listItems(c *gin.Context) {
	all, err := s.store.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, all)
}

func (s *Server) getItem(c *gin.Context) {
	item, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, items.ErrNotFound) {
		c.JSON(http.StatusNotFound, errNotFoundBody)
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) createItem(c *gin.Context) {
	fields, ok := bindItem(c)
	if !ok {
		return
	}

	id, err := s.store.Create(c.Request.Context(), fields)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{items.IDField: id})
}

func (s *Server) updateItem(c *gin.Context) {
	fields, ok := bindItem(c)
	if !ok {
		return
	}

	err := s.store.Update(c.Request.Context(), c.Param("id"), fields)
	if errors.Is(err, items.ErrNotFound) {
		c.JSON(http.StatusNotFound, errNotFoundBody)
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item updated"})
}

func (s *Server) deleteItem(c *gin.Context) {
	err := s.store.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, items.ErrNotFound) {
		c.JSON(http.StatusNotFound, errNotFoundBody)
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}

// bindItem decodes the request body into an Item, answering 400 itself when
// the body is not a JSON object.
func bindItem(c *gin.Context) (items.Item, bool) {
	var fields items.Item
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if fields == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errNotObject.Error()})
		return nil, false
	}
	items.NormalizeNumbers(fields)
	return fields, true
}
