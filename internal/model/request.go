package model

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SetupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

// UpdateUserRequest carries a partial user update; absent fields keep
// their current values. A blank password is treated as absent.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"isAdmin"`
}

type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type UpdateCategoryRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type CreateBoxRequest struct {
	Number     int    `json:"number"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	Notes      string `json:"notes"`
	CategoryID int64  `json:"categoryId"`
}

type UpdateBoxRequest struct {
	Number     *int    `json:"number"`
	Name       *string `json:"name"`
	Location   *string `json:"location"`
	Notes      *string `json:"notes"`
	CategoryID *int64  `json:"categoryId"`
}

type AddItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type ScanRequest struct {
	Image string `json:"image"`
}

type SaveSettingRequest struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

type LoginResponse struct {
	IsAdmin  bool   `json:"isAdmin"`
	Redirect string `json:"redirect"`
}

type VerifyResponse struct {
	Authenticated bool      `json:"authenticated"`
	User          *Identity `json:"user,omitempty"`
	Legacy        bool      `json:"legacy,omitempty"`
}

type CheckUsersResponse struct {
	HasUsers bool `json:"hasUsers"`
}

type ScanResponse struct {
	AddedItems []string `json:"addedItems"`
}
