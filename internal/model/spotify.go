package model

// TopTrack is the flattened shape of a Spotify top track.
type TopTrack struct {
	Artist        string `json:"artist"`
	Title         string `json:"title"`
	SongURL       string `json:"songUrl"`
	AlbumImageURL string `json:"albumImageUrl"`
}
