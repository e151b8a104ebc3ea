package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// Seeds the API with fake users, follows, posts, comments and likes, then
// reads back a few feeds so the cache gets warmed. Intended for local
// development against a running server.

var (
	baseURL   = flag.String("url", "http://localhost:8080", "API base URL")
	userCount = flag.Int("users", 10, "number of users to create")
	postCount = flag.Int("posts", 30, "number of posts to create")
)

func main() {
	flag.Parse()
	gofakeit.Seed(time.Now().UnixNano())

	// 1. Users
	userIDs := make([]uuid.UUID, 0, *userCount)
	for i := 0; i < *userCount; i++ {
		if id, ok := createUser(); ok {
			userIDs = append(userIDs, id)
		}
	}
	if len(userIDs) < 2 {
		log.Fatal("Not enough users created, aborting")
	}
	log.Printf("Created %d users", len(userIDs))

	// 2. Follow graph: everyone follows a handful of random users
	follows := 0
	for _, follower := range userIDs {
		for i := 0; i < 3; i++ {
			target := userIDs[rand.Intn(len(userIDs))]
			if target == follower {
				continue
			}
			if follow(follower, target) {
				follows++
			}
		}
	}
	log.Printf("Created %d follows", follows)

	// 3. Posts
	postIDs := make([]uuid.UUID, 0, *postCount)
	for i := 0; i < *postCount; i++ {
		author := userIDs[rand.Intn(len(userIDs))]
		if id, ok := createPost(author); ok {
			postIDs = append(postIDs, id)
		}
	}
	log.Printf("Created %d posts", len(postIDs))

	// 4. Comments and likes
	for _, postID := range postIDs {
		for i := 0; i < rand.Intn(4); i++ {
			createComment(userIDs[rand.Intn(len(userIDs))], postID)
		}
		for i := 0; i < rand.Intn(5); i++ {
			likePost(userIDs[rand.Intn(len(userIDs))], postID)
		}
	}

	// 5. Read feeds to warm the cache
	for i := 0; i < 5 && i < len(userIDs); i++ {
		getFeed(userIDs[i])
	}

	log.Println("Seeding complete")
}

func createUser() (uuid.UUID, bool) {
	payload := map[string]string{
		"username": gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(10, 9999)),
		"fullName": gofakeit.Name(),
		"bio":      gofakeit.Sentence(8),
	}
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	if !post("/users", uuid.Nil, payload, &created) {
		return uuid.Nil, false
	}
	return created.ID, true
}

func follow(follower, target uuid.UUID) bool {
	return post(fmt.Sprintf("/users/%s/follow", target), follower, nil, nil)
}

func createPost(author uuid.UUID) (uuid.UUID, bool) {
	mediaURLs := []string{gofakeit.ImageURL(640, 480)}
	if gofakeit.Bool() {
		mediaURLs = append(mediaURLs, gofakeit.ImageURL(640, 480))
	}
	payload := map[string]interface{}{
		"caption":   gofakeit.Sentence(12),
		"location":  gofakeit.City(),
		"mediaUrls": mediaURLs,
	}
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	if !post("/posts", author, payload, &created) {
		return uuid.Nil, false
	}
	return created.ID, true
}

func createComment(userID, postID uuid.UUID) {
	payload := map[string]interface{}{
		"postId":  postID,
		"content": gofakeit.Sentence(6),
	}
	post("/comments", userID, payload, nil)
}

func likePost(userID, postID uuid.UUID) {
	post(fmt.Sprintf("/likes/posts/%s", postID), userID, nil, nil)
}

func getFeed(userID uuid.UUID) {
	req, _ := http.NewRequest("GET", *baseURL+"/feed", nil)
	req.Header.Set("X-User-ID", userID.String())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Println("Error in getFeed:", err)
		return
	}
	defer resp.Body.Close()
	log.Printf("getFeed %s status: %s", userID, resp.Status)
}

// post sends a JSON POST as the given actor and decodes the response into
// out when it is non-nil. Returns whether the call got a 2xx.
func post(path string, actor uuid.UUID, payload, out interface{}) bool {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			log.Println("Error encoding payload:", err)
			return false
		}
	}

	req, err := http.NewRequest("POST", *baseURL+path, &body)
	if err != nil {
		log.Println("Error creating request:", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	if actor != uuid.Nil {
		req.Header.Set("X-User-ID", actor.String())
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("Error in POST %s: %v", path, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("POST %s status: %s", path, resp.Status)
		return false
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Printf("Error decoding response from %s: %v", path, err)
			return false
		}
	}
	return true
}
