package store

import (
	"strings"
	"time"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/model"
)

type Show struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Hosts       []Host    `gorm:"foreignKey:ShowID" json:"hosts"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Show) TableName() string {
	return "show_profiles"
}

// Host is one voice of a show. Position keeps the order the hosts were declared in.
type Host struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	ShowID      uint   `gorm:"not null;index" json:"-"`
	Position    int    `gorm:"not null" json:"position"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Voice       string `gorm:"size:255" json:"voice"`
	Personality string `gorm:"type:text" json:"personality"`
}

func (Host) TableName() string {
	return "show_hosts"
}

type Podcast struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ShowID      *uint     `gorm:"index" json:"show_id,omitempty"`
	Name        string    `gorm:"size:255" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Hosts       []string  `gorm:"serializer:json" json:"hosts"`
	Research    string    `gorm:"type:text" json:"research"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Podcast) TableName() string {
	return "podcasts"
}

type Script struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	ShowID      *uint               `gorm:"index" json:"show_id,omitempty"`
	PodcastID   *uint               `gorm:"index" json:"podcast_id,omitempty"`
	Content     string              `gorm:"type:text;not null" json:"content"`
	Facts       []string            `gorm:"serializer:json" json:"facts,omitempty"`
	ResearchURL string              `gorm:"type:text" json:"research_url,omitempty"`
	Audio       []byte              `json:"-"`
	AudioFormat string              `gorm:"size:32" json:"audio_format,omitempty"`
	Warnings    []model.LineWarning `gorm:"serializer:json" json:"warnings,omitempty"`
	RunID       string              `gorm:"size:64" json:"run_id,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (Script) TableName() string {
	return "scripts"
}

func (s *Script) HasAudio() bool {
	return len(s.Audio) > 0
}

func (s *Show) Profile() model.ShowProfile {
	profile := model.ShowProfile{
		Name:        s.Name,
		Description: s.Description,
		Hosts:       make([]model.Host, 0, len(s.Hosts)),
	}
	for _, host := range s.Hosts {
		profile.Hosts = append(profile.Hosts, model.Host{
			Name:        host.Name,
			Voice:       host.Voice,
			Personality: host.Personality,
		})
	}
	return profile
}

func hostsFromProfile(profile model.ShowProfile) []Host {
	hosts := make([]Host, 0, len(profile.Hosts))
	for _, host := range profile.Hosts {
		name := strings.TrimSpace(host.Name)
		if name == "" {
			continue
		}
		hosts = append(hosts, Host{
			Position:    len(hosts),
			Name:        name,
			Voice:       strings.TrimSpace(host.Voice),
			Personality: strings.TrimSpace(host.Personality),
		})
	}
	return hosts
}

func allModels() []any {
	return []any{&Show{}, &Host{}, &Podcast{}, &Script{}}
}
