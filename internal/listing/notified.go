package listing

import (
	"encoding/json"
	"os"
	"time"
)

// NotifiedListings is the set of (listing, user) pairs already alerted,
// carried across runs as a JSON file so the same deal is never sent twice.
// The file is orchestration glue owned by the caller; the engine only reads
// the markers stamped onto listings.
type NotifiedListings struct {
	Items []*NotifiedListing
}

type NotifiedListing struct {
	ListingID  string    `json:"listing_id"`
	UserID     string    `json:"user_id"`
	NotifiedAt time.Time `json:"notified_at"`
}

// NotifiedFromFile loads the notified set. A missing or empty file yields an
// empty set, not an error, so first runs need no setup.
func NotifiedFromFile(path string) (*NotifiedListings, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &NotifiedListings{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() == 0 {
		return &NotifiedListings{}, nil
	}

	var notified NotifiedListings
	if err := json.NewDecoder(file).Decode(&notified); err != nil {
		return nil, err
	}
	return &notified, nil
}

// ToFile writes the notified set back to disk.
func (n *NotifiedListings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(n)
}

// Add records a (listing, user) pair unless it is already present.
func (n *NotifiedListings) Add(listingID, userID string) {
	for _, item := range n.Items {
		if item.ListingID == listingID && item.UserID == userID {
			return
		}
	}
	n.Items = append(n.Items, &NotifiedListing{
		ListingID:  listingID,
		UserID:     userID,
		NotifiedAt: time.Now().UTC(),
	})
}

// Apply stamps the notified markers onto the matching listings.
func (n *NotifiedListings) Apply(ls *Listings) {
	if len(n.Items) == 0 {
		return
	}

	byListing := make(map[string][]string)
	for _, item := range n.Items {
		byListing[item.ListingID] = append(byListing[item.ListingID], item.UserID)
	}

	for _, l := range ls.Items {
		if users, ok := byListing[l.ID()]; ok {
			for _, user := range users {
				if !l.NotifiedToUser(user) {
					l.NotifiedTo = append(l.NotifiedTo, user)
				}
			}
		}
	}
}
