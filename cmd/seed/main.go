package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/go-social-feed/config"
	"github.com/oksasatya/go-social-feed/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dsn := cfg.PostgresDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	seedUsers := []struct {
		email, name string
	}{
		{"alice@example.com", "Alice"},
		{"bob@example.com", "Bob"},
		{"carol@example.com", "Carol"},
	}

	ids := make([]string, 0, len(seedUsers))
	for _, u := range seedUsers {
		var id string
		err = db.QueryRow(`
			INSERT INTO users (email, password_hash, name, avatar_url)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO UPDATE SET name=EXCLUDED.name
			RETURNING id
		`, u.email, hash, u.name, "").Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", u.email, err)
		}
		ids = append(ids, id)
		fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", id, u.email, u.name, password)
	}

	// Alice follows Bob and Carol so the seeded feed has content
	if _, err := db.Exec(`
		UPDATE users SET following = $2::jsonb, updated_at = now() WHERE id = $1
	`, ids[0], fmt.Sprintf(`["%s","%s"]`, ids[1], ids[2])); err != nil {
		log.Fatalf("failed to seed following: %v", err)
	}

	seedPosts := []struct {
		ownerIdx            int
		title, country      string
		continent, imageURL string
	}{
		{1, "Sunrise over Uluru", "Australia", "Oceania", ""},
		{1, "Street food in Hanoi", "Vietnam", "Asia", ""},
		{2, "Hiking the Dolomites", "Italy", "Europe", ""},
	}

	for _, p := range seedPosts {
		var name string
		if err := db.QueryRow(`SELECT name FROM users WHERE id = $1`, ids[p.ownerIdx]).Scan(&name); err != nil {
			log.Fatalf("failed to load owner: %v", err)
		}
		var postID string
		err = db.QueryRow(`
			INSERT INTO posts (owner_id, owner_name, owner_avatar, title, description, country, continent, comment_access, image_url)
			VALUES ($1, $2, '', $3, '', $4, $5, true, $6)
			RETURNING id
		`, ids[p.ownerIdx], name, p.title, p.country, p.continent, p.imageURL).Scan(&postID)
		if err != nil {
			log.Fatalf("failed to seed post %q: %v", p.title, err)
		}
		fmt.Printf("seeded post: id=%s owner=%s title=%q\n", postID, name, p.title)
	}
}
