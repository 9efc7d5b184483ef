package fakeserver

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"

	"bidmarket-client/internal/models"
)

const contextUserKey = "authenticatedUser"

// SetupRouter configures the gin routes emulating the marketplace REST API.
func SetupRouter(repo *MemoryRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())

	auth := router.Group("/auth")
	{
		auth.POST("/login", repo.loginHandler)
		auth.POST("/register", repo.registerHandler)
		auth.POST("/verify-account", repo.verifyAccountHandler)
		auth.POST("/resend-code", repo.resendCodeHandler)
		auth.POST("/reset-password", repo.resetPasswordHandler)
		auth.POST("/update-password", repo.updatePasswordHandler)
	}

	// browsing and photo retrieval are public
	router.GET("/auctions", repo.listAuctionsHandler)
	router.GET("/auctions/:id", repo.getAuctionHandler)
	router.GET("/users/:id/auctions", repo.listAuctionsBySellerHandler)
	router.GET("/auctions/:id/photos/:photoId", repo.getAuctionPhotoHandler)
	router.GET("/users/:id/photo", repo.getUserPhotoHandler)

	protected := router.Group("/", repo.requireBearerToken)
	{
		protected.POST("/auctions", repo.createAuctionHandler)
		protected.PUT("/auctions/:id", repo.updateAuctionHandler)
		protected.DELETE("/auctions/:id", repo.deleteAuctionHandler)

		protected.GET("/users/:id", repo.getUserHandler)
		protected.PUT("/users/:id", repo.updateUserHandler)
		protected.DELETE("/users/:id/photo", repo.deleteUserPhotoHandler)

		protected.GET("/users/:id/notifications", repo.listNotificationsHandler)
		protected.PUT("/notifications/:id/read", repo.markNotificationReadHandler)
	}

	return router
}

// Start runs the fake backend on an httptest server. The caller owns the
// returned server and must Close it.
func Start(repo *MemoryRepo) *httptest.Server {
	return httptest.NewServer(SetupRouter(repo))
}

// requireBearerToken rejects requests without a known bearer token and
// stashes the resolved user in the request context.
func (r *MemoryRepo) requireBearerToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
		return
	}

	user, ok := r.userByToken(token)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
		return
	}

	c.Set(contextUserKey, user)
	c.Next()
}

// currentUser returns the user resolved by requireBearerToken.
func currentUser(c *gin.Context) models.User {
	if value, ok := c.Get(contextUserKey); ok {
		if user, ok := value.(models.User); ok {
			return user
		}
	}
	return models.User{}
}
