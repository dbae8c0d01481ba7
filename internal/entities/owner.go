package entities

// Owner is a shop account (tenant). Every domain row is scoped by OwnerID.
type Owner struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	ShopName     string `json:"shop_name"`
	BotToken     string `json:"-"` // empty when the shop has no bot
	IsActive     bool   `json:"is_active"`
}

// Credential pairs a tenant with its current bot token. The fleet manager
// treats a changed token for the same owner as remove-old + add-new.
type Credential struct {
	OwnerID int
	Token   string
}
