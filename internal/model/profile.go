package model

// Profile is the backend account profile. Avatar is a media URL and may be
// empty.
type Profile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
	Theme    string `json:"theme"`
}
