package store

import (
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"raffledash/internal/models"
)

// fixtureFile is the YAML layout read by LoadFixtures. Entries stay as nodes
// so one bad entry does not fail the file.
type fixtureFile struct {
	Raffles []yaml.Node `yaml:"raffles"`
	Buyers  []yaml.Node `yaml:"buyers"`
}

type fixtureRaffle struct {
	ID         yamlText   `yaml:"id"`
	Name       yamlText   `yaml:"name"`
	Creator    yamlText   `yaml:"creator"`
	StartTime  yamlTime   `yaml:"startTime"`
	FloorPrice yamlText   `yaml:"floorPrice"`
	IsDeleted  yamlFlag   `yaml:"isDeleted"`
	Prizes     yamlPrizes `yaml:"prizes"`
}

func (f fixtureRaffle) raffle() models.Raffle {
	id := string(f.ID)
	if id == "" {
		id = uuid.NewString()
	}
	return models.Raffle{
		ID:         id,
		Name:       string(f.Name),
		Creator:    string(f.Creator),
		StartTime:  time.Time(f.StartTime),
		FloorPrice: string(f.FloorPrice),
		IsDeleted:  bool(f.IsDeleted),
		Prizes:     []models.Prize(f.Prizes),
	}
}

type fixtureBuyer struct {
	ID        yamlText    `yaml:"id"`
	RaffleID  yamlText    `yaml:"raffleId"`
	Buyer     yamlText    `yaml:"buyer"`
	Tickets   yamlTickets `yaml:"tickets"`
	CreatedAt yamlTime    `yaml:"createdAt"`
	UpdatedAt yamlTime    `yaml:"updatedAt"`
}

func (f fixtureBuyer) buyer() models.Buyer {
	id := string(f.ID)
	if id == "" {
		id = uuid.NewString()
	}
	tickets := models.Tickets(f.Tickets)
	if tickets == nil {
		tickets = models.Tickets{}
	}
	return models.Buyer{
		ID:        id,
		RaffleID:  string(f.RaffleID),
		Buyer:     string(f.Buyer),
		Tickets:   tickets,
		CreatedAt: time.Time(f.CreatedAt),
		UpdatedAt: time.Time(f.UpdatedAt),
	}
}

// yamlText takes any scalar verbatim, so floorPrice: 1.50 reads as "1.50"
type yamlText string

func (t *yamlText) UnmarshalYAML(n *yaml.Node) error {
	*t = ""
	if n.Kind == yaml.ScalarNode && n.ShortTag() != "!!null" {
		*t = yamlText(n.Value)
	}
	return nil
}

type yamlTime time.Time

func (t *yamlTime) UnmarshalYAML(n *yaml.Node) error {
	*t = yamlTime{}
	if n.Kind == yaml.ScalarNode {
		*t = yamlTime(parseTime(n.Value))
	}
	return nil
}

type yamlFlag bool

func (f *yamlFlag) UnmarshalYAML(n *yaml.Node) error {
	var b bool
	if n.Kind != yaml.ScalarNode || n.Decode(&b) != nil {
		b = false
	}
	*f = yamlFlag(b)
	return nil
}

// yamlTickets keeps the integer entries of a sequence
type yamlTickets []int

func (t *yamlTickets) UnmarshalYAML(n *yaml.Node) error {
	tickets := yamlTickets{}
	if n.Kind == yaml.SequenceNode {
		for _, e := range n.Content {
			var num int
			if e.Decode(&num) == nil {
				tickets = append(tickets, num)
			}
		}
	}
	*t = tickets
	return nil
}

// yamlPrizes drops prizes that do not decode
type yamlPrizes []models.Prize

func (p *yamlPrizes) UnmarshalYAML(n *yaml.Node) error {
	var prizes yamlPrizes
	if n.Kind == yaml.SequenceNode {
		for _, e := range n.Content {
			var prize models.Prize
			if e.Decode(&prize) == nil {
				prizes = append(prizes, prize)
			}
		}
	}
	*p = prizes
	return nil
}
