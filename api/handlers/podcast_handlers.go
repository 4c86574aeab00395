package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"podforge/models"
	"podforge/services"
)

// ListPodcastsHandler godoc
// @Summary      List podcasts
// @Description  List stored podcasts, newest first
// @Tags         podcasts
// @Param        page       query  int  false  "Page number (1-based)"
// @Param        page_size  query  int  false  "Page size (<=100)"
// @Produce      json
// @Success      200  {array}  dto.PodcastDTO
// @Router       /podcasts [get]
func ListPodcastsHandler(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

		items, err := svc.ListRecent(c.Request.Context(), services.ListInput{Page: page, PageSize: pageSize})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// TrendingPodcastsHandler godoc
// @Summary      List trending podcasts
// @Description  List podcasts by plays, then likes, then recency
// @Tags         podcasts
// @Param        limit  query  int  false  "Maximum results (default 12)"
// @Produce      json
// @Success      200  {array}  dto.PodcastDTO
// @Router       /trending-podcasts [get]
func TrendingPodcastsHandler(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))

		items, err := svc.ListTrending(c.Request.Context(), limit)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// GetPodcastHandler godoc
// @Summary      Get podcast by id
// @Tags         podcasts
// @Param        id  path  string  true  "ObjectID"
// @Produce      json
// @Success      200  {object}  dto.PodcastDTO
// @Failure      404  {object}  map[string]string
// @Router       /podcasts/{id} [get]
func GetPodcastHandler(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// CreatePodcastHandler godoc
// @Summary      Create a podcast directly
// @Description  Store a podcast assembled through the granular generation endpoints
// @Tags         podcasts
// @Accept       json
// @Produce      json
// @Success      201  {object}  dto.PodcastDTO
// @Failure      400  {object}  map[string]string
// @Router       /podcasts [post]
func CreatePodcastHandler(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.CreatePodcastInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		p, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// IncrementStatHandler returns a handler that bumps the fixed counter kind.
// Used for the PUT /podcasts/:id/views and /podcasts/:id/like routes.
func IncrementStatHandler(svc *services.PodcastService, kind models.StatKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.IncrementStat(c.Request.Context(), c.Param("id"), string(kind))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// UpdateStatsHandler godoc
// @Summary      Increment an engagement counter
// @Description  Increments one of view/play/like/share by action name
// @Tags         podcasts
// @Param        id  path  string  true  "ObjectID"
// @Accept       json
// @Produce      json
// @Success      200  {object}  dto.PodcastDTO
// @Failure      404  {object}  map[string]string
// @Router       /podcast/{id}/stats [post]
func UpdateStatsHandler(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Action string `json:"action"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		p, err := svc.IncrementStat(c.Request.Context(), c.Param("id"), body.Action)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// FeedHandler godoc
// @Summary      Podcast RSS feed
// @Description  The stored catalog as RSS, consumable by podcast players
// @Tags         podcasts
// @Produce      xml
// @Success      200  {string}  string
// @Router       /podcasts/feed.rss [get]
func FeedHandler(svc *services.FeedService) gin.HandlerFunc {
	return func(c *gin.Context) {
		siteURL := "http://" + c.Request.Host
		if c.Request.TLS != nil {
			siteURL = "https://" + c.Request.Host
		}

		xml, err := svc.BuildFeed(c.Request.Context(), siteURL)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(xml))
	}
}
