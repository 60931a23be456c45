package server

import "time"

type HTTPError struct {
	Error string `json:"error"`
}

type AuthSignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type PetRequest struct {
	Name      string     `json:"name"`
	Species   string     `json:"species"`
	Breed     string     `json:"breed"`
	BirthDate *time.Time `json:"birth_date"`
	PhotoURL  string     `json:"photo_url"`
}

type PetResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Species   string     `json:"species"`
	Breed     string     `json:"breed"`
	BirthDate *time.Time `json:"birth_date"`
	PhotoURL  string     `json:"photo_url"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type DocumentRequest struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
}

type DocumentResponse struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type VaccinationRequest struct {
	Name           string     `json:"name"`
	AdministeredAt time.Time  `json:"administered_at"`
	NextDue        *time.Time `json:"next_due"`
	Notes          string     `json:"notes"`
}

type VaccinationResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	AdministeredAt time.Time  `json:"administered_at"`
	NextDue        *time.Time `json:"next_due"`
	Notes          string     `json:"notes"`
}

type MealRequest struct {
	Name        string    `json:"name"`
	FoodType    string    `json:"food_type"`
	AmountGrams float64   `json:"amount_grams"`
	FedAt       time.Time `json:"fed_at"`
	Notes       string    `json:"notes"`
}

type MealResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	FoodType    string    `json:"food_type"`
	AmountGrams float64   `json:"amount_grams"`
	FedAt       time.Time `json:"fed_at"`
	Notes       string    `json:"notes"`
}

type ReminderRequest struct {
	PetID    string    `json:"pet_id"`
	Title    string    `json:"title"`
	DueAt    time.Time `json:"due_at"`
	Schedule string    `json:"schedule"`
}

type ReminderResponse struct {
	ID          string     `json:"id"`
	PetID       string     `json:"pet_id"`
	Title       string     `json:"title"`
	DueAt       time.Time  `json:"due_at"`
	Schedule    string     `json:"schedule,omitempty"`
	LastFiredAt *time.Time `json:"last_fired_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type NotificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type AskRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}
