package fakeserver

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bidmarket-client/internal/models"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Firstname string `json:"firstname" binding:"required"`
	Lastname  string `json:"lastname" binding:"required"`
	CIN       int64  `json:"cin" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

type verifyRequest struct {
	Email    string `json:"email" binding:"required"`
	Code     string `json:"code" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetRequest struct {
	CIN   int64  `json:"cin" binding:"required"`
	Email string `json:"email" binding:"required"`
}

type updatePasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type sessionResponse struct {
	Token             string      `json:"token"`
	User              models.User `json:"user"`
	NeedsVerification bool        `json:"needsVerification"`
}

type auctionPayload struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	StartingPrice   float64         `json:"startingPrice"`
	Category        models.Category `json:"category"`
	ExpireDate      time.Time       `json:"expireDate"`
	SellerID        int64           `json:"sellerId"`
	RemovedPhotoIDs []int64         `json:"removedPhotoIds"`
}

type userPayload struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
}

func newCode() string {
	return strings.ToUpper(uuid.New().String()[:6])
}

// --- auth handlers ---

func (r *MemoryRepo) loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.emailIndex[req.Email]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "unknown account"})
		return
	}
	if r.passwords[req.Email] != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "wrong credentials"})
		return
	}

	user := r.users[userID]
	if user.Status == models.UserStatusPending {
		c.JSON(http.StatusOK, sessionResponse{User: user, NeedsVerification: true})
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Token: r.issueToken(userID), User: user})
}

func (r *MemoryRepo) registerHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.emailIndex[req.Email]; exists {
		c.JSON(http.StatusConflict, gin.H{"message": "email already registered"})
		return
	}

	user := models.User{
		ID:        r.allocateID(),
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		CIN:       req.CIN,
		Email:     req.Email,
		Role:      "user",
		Status:    models.UserStatusPending,
	}
	r.users[user.ID] = user
	r.emailIndex[user.Email] = user.ID
	r.passwords[user.Email] = req.Password
	// the real backend emails this; tests read it via VerificationCode
	r.codes[user.Email] = newCode()

	c.JSON(http.StatusCreated, user)
}

func (r *MemoryRepo) verifyAccountHandler(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.emailIndex[req.Email]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "unknown account"})
		return
	}
	if code, pending := r.codes[req.Email]; !pending || code != req.Code {
		c.JSON(http.StatusBadRequest, gin.H{"message": "wrong verification code"})
		return
	}
	if r.passwords[req.Email] != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "wrong credentials"})
		return
	}

	user := r.users[userID]
	user.Status = models.UserStatusActive
	r.users[userID] = user
	delete(r.codes, req.Email)

	c.JSON(http.StatusOK, sessionResponse{Token: r.issueToken(userID), User: user})
}

func (r *MemoryRepo) resendCodeHandler(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, pending := r.codes[req.Email]; !pending {
		c.JSON(http.StatusNotFound, gin.H{"message": "no pending verification"})
		return
	}
	r.codes[req.Email] = newCode()
	c.JSON(http.StatusOK, gin.H{"message": "code sent"})
}

func (r *MemoryRepo) resetPasswordHandler(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.emailIndex[req.Email]
	if !ok || r.users[userID].CIN != req.CIN {
		c.JSON(http.StatusNotFound, gin.H{"message": "no matching account"})
		return
	}
	r.codes[req.Email] = newCode()
	c.JSON(http.StatusOK, gin.H{"message": "reset code sent"})
}

func (r *MemoryRepo) updatePasswordHandler(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if code, ok := r.codes[req.Email]; !ok || code != req.Code {
		c.JSON(http.StatusBadRequest, gin.H{"message": "wrong reset code"})
		return
	}
	r.passwords[req.Email] = req.NewPassword
	delete(r.codes, req.Email)
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// --- user handlers ---

func (r *MemoryRepo) getUserHandler(c *gin.Context) {
	id := pathID(c, "id")

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (r *MemoryRepo) updateUserHandler(c *gin.Context) {
	id := pathID(c, "id")

	var payload userPayload
	var photo []byte

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		raw := c.Request.FormValue("user")
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user metadata"})
			return
		}
		if file, err := c.FormFile("photo"); err == nil {
			photo = readUpload(file)
		}
	} else if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}

	if payload.Email != "" && payload.Email != user.Email {
		if _, taken := r.emailIndex[payload.Email]; taken {
			c.JSON(http.StatusConflict, gin.H{"message": "email in use"})
			return
		}
		delete(r.emailIndex, user.Email)
		r.passwords[payload.Email] = r.passwords[user.Email]
		delete(r.passwords, user.Email)
		user.Email = payload.Email
		r.emailIndex[user.Email] = user.ID
	}
	if payload.Firstname != "" {
		user.Firstname = payload.Firstname
	}
	if payload.Lastname != "" {
		user.Lastname = payload.Lastname
	}
	if photo != nil {
		photoID := r.allocateID()
		user.PhotoID = &photoID
		r.userPhotos[user.ID] = photo
	}

	r.users[id] = user
	c.JSON(http.StatusOK, user)
}

func (r *MemoryRepo) getUserPhotoHandler(c *gin.Context) {
	id := pathID(c, "id")

	r.mu.RLock()
	defer r.mu.RUnlock()

	photo, ok := r.userPhotos[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "no photo"})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", photo)
}

func (r *MemoryRepo) deleteUserPhotoHandler(c *gin.Context) {
	id := pathID(c, "id")

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok || user.PhotoID == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "no photo"})
		return
	}
	user.PhotoID = nil
	r.users[id] = user
	delete(r.userPhotos, id)
	c.JSON(http.StatusOK, gin.H{"message": "photo removed"})
}

// --- auction handlers ---

func (r *MemoryRepo) listAuctionsHandler(c *gin.Context) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Auction, 0, len(r.auctionOrder))
	for _, id := range r.auctionOrder {
		out = append(out, r.auctions[id])
	}
	c.JSON(http.StatusOK, out)
}

func (r *MemoryRepo) getAuctionHandler(c *gin.Context) {
	id := pathID(c, "id")

	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "auction not found"})
		return
	}
	c.JSON(http.StatusOK, auction)
}

func (r *MemoryRepo) listAuctionsBySellerHandler(c *gin.Context) {
	sellerID := pathID(c, "id")

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Auction, 0)
	for _, id := range r.auctionOrder {
		if auction := r.auctions[id]; auction.Seller.ID == sellerID {
			out = append(out, auction)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (r *MemoryRepo) createAuctionHandler(c *gin.Context) {
	payload, files, ok := bindAuctionForm(c)
	if !ok {
		return
	}
	if payload.Title == "" || payload.StartingPrice <= 0 || !payload.ExpireDate.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid auction details"})
		return
	}

	seller := currentUser(c)

	r.mu.Lock()
	defer r.mu.Unlock()

	expire := payload.ExpireDate
	auction := models.Auction{
		ID:            r.allocateID(),
		Title:         payload.Title,
		Description:   payload.Description,
		StartingPrice: payload.StartingPrice,
		Category:      payload.Category,
		Status:        models.AuctionStatusActive,
		ExpireDate:    &expire,
		Seller:        seller,
	}

	r.photos[auction.ID] = make(map[int64][]byte)
	for _, file := range files {
		photoID := r.allocateID()
		r.photos[auction.ID][photoID] = file
		auction.PhotoIDs = append(auction.PhotoIDs, photoID)
	}

	r.auctions[auction.ID] = auction
	r.auctionOrder = append(r.auctionOrder, auction.ID)
	c.JSON(http.StatusCreated, auction)
}

func (r *MemoryRepo) updateAuctionHandler(c *gin.Context) {
	id := pathID(c, "id")
	payload, files, ok := bindAuctionForm(c)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	auction, exists := r.auctions[id]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"message": "auction not found"})
		return
	}

	auction.Title = payload.Title
	auction.Description = payload.Description
	auction.StartingPrice = payload.StartingPrice
	auction.Category = payload.Category
	if !payload.ExpireDate.IsZero() {
		expire := payload.ExpireDate
		auction.ExpireDate = &expire
	}

	for _, removed := range payload.RemovedPhotoIDs {
		delete(r.photos[id], removed)
		auction.PhotoIDs = removeID(auction.PhotoIDs, removed)
	}
	if r.photos[id] == nil {
		r.photos[id] = make(map[int64][]byte)
	}
	for _, file := range files {
		photoID := r.allocateID()
		r.photos[id][photoID] = file
		auction.PhotoIDs = append(auction.PhotoIDs, photoID)
	}

	r.auctions[id] = auction
	c.JSON(http.StatusOK, auction)
}

func (r *MemoryRepo) deleteAuctionHandler(c *gin.Context) {
	id := pathID(c, "id")

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "auction not found"})
		return
	}
	delete(r.auctions, id)
	delete(r.photos, id)
	r.auctionOrder = removeID(r.auctionOrder, id)
	c.JSON(http.StatusOK, gin.H{"message": "auction deleted"})
}

func (r *MemoryRepo) getAuctionPhotoHandler(c *gin.Context) {
	auctionID := pathID(c, "id")
	photoID := pathID(c, "photoId")

	r.mu.RLock()
	defer r.mu.RUnlock()

	photo, ok := r.photos[auctionID][photoID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "photo not found"})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", photo)
}

// --- notification handlers ---

func (r *MemoryRepo) listNotificationsHandler(c *gin.Context) {
	userID := pathID(c, "id")

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Notification, 0)
	for _, id := range r.notifOrder {
		if r.notifRecipients[id] == userID {
			out = append(out, r.notifications[id])
		}
	}
	c.JSON(http.StatusOK, out)
}

func (r *MemoryRepo) markNotificationReadHandler(c *gin.Context) {
	id := pathID(c, "id")

	r.mu.Lock()
	defer r.mu.Unlock()

	notification, ok := r.notifications[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "notification not found"})
		return
	}
	notification.Read = true
	r.notifications[id] = notification
	c.JSON(http.StatusOK, notification)
}

// --- helpers ---

func pathID(c *gin.Context, name string) int64 {
	id, _ := strconv.ParseInt(c.Param(name), 10, 64)
	return id
}

func removeID(list []int64, id int64) []int64 {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// bindAuctionForm decodes the multipart "auction" metadata part and the
// attached photo parts.
func bindAuctionForm(c *gin.Context) (auctionPayload, [][]byte, bool) {
	var payload auctionPayload

	raw := c.Request.FormValue("auction")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing auction metadata"})
		return payload, nil, false
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid auction metadata"})
		return payload, nil, false
	}

	var files [][]byte
	if form, err := c.MultipartForm(); err == nil {
		for _, header := range form.File["photos"] {
			files = append(files, readUpload(header))
		}
	}
	return payload, files, true
}

func readUpload(header *multipart.FileHeader) []byte {
	file, err := header.Open()
	if err != nil {
		return nil
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil
	}
	return data
}
