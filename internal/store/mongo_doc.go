package store

import (
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"raffledash/internal/models"
)

// raffleDoc and buyerDoc hold fields as raw values so a document with a
// wrongly typed field still decodes. Conversion to the model happens field
// by field.
type raffleDoc struct {
	ID         bson.RawValue `bson:"_id"`
	Name       bson.RawValue `bson:"name"`
	Creator    bson.RawValue `bson:"creator"`
	StartTime  bson.RawValue `bson:"startTime"`
	FloorPrice bson.RawValue `bson:"floorPrice"`
	IsDeleted  bson.RawValue `bson:"isDeleted"`
	Prizes     bson.RawValue `bson:"prizes"`
}

func (d raffleDoc) raffle() models.Raffle {
	return models.Raffle{
		ID:         rawString(d.ID),
		Name:       rawString(d.Name),
		Creator:    rawString(d.Creator),
		StartTime:  rawTime(d.StartTime),
		FloorPrice: rawString(d.FloorPrice),
		IsDeleted:  rawBool(d.IsDeleted),
		Prizes:     rawPrizes(d.Prizes),
	}
}

type buyerDoc struct {
	ID        bson.RawValue `bson:"_id"`
	RaffleID  bson.RawValue `bson:"raffleId"`
	Buyer     bson.RawValue `bson:"buyer"`
	Tickets   bson.RawValue `bson:"tickets"`
	CreatedAt bson.RawValue `bson:"createdAt"`
	UpdatedAt bson.RawValue `bson:"updatedAt"`
}

func (d buyerDoc) buyer() models.Buyer {
	return models.Buyer{
		ID:        rawString(d.ID),
		RaffleID:  rawString(d.RaffleID),
		Buyer:     rawString(d.Buyer),
		Tickets:   rawTickets(d.Tickets),
		CreatedAt: rawTime(d.CreatedAt),
		UpdatedAt: rawTime(d.UpdatedAt),
	}
}

// rawString renders strings, ObjectIDs and numbers as text. Numbers keep
// their exact decimal form so floorPrice written as a double still parses.
func rawString(v bson.RawValue) string {
	switch v.Type {
	case bson.TypeString:
		return v.StringValue()
	case bson.TypeObjectID:
		return v.ObjectID().Hex()
	case bson.TypeDouble:
		return formatFloat(v.Double())
	case bson.TypeInt32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case bson.TypeInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case bson.TypeDecimal128:
		return v.Decimal128().String()
	default:
		return ""
	}
}

// rawTime reads BSON dates and ISO strings. Anything else is the zero time.
func rawTime(v bson.RawValue) time.Time {
	switch v.Type {
	case bson.TypeDateTime:
		return time.UnixMilli(v.DateTime()).UTC()
	case bson.TypeTimestamp:
		sec, _ := v.Timestamp()
		return time.Unix(int64(sec), 0).UTC()
	case bson.TypeString:
		return parseTime(v.StringValue())
	default:
		return time.Time{}
	}
}

func rawBool(v bson.RawValue) bool {
	switch v.Type {
	case bson.TypeBoolean:
		return v.Boolean()
	case bson.TypeInt32:
		return v.Int32() != 0
	case bson.TypeInt64:
		return v.Int64() != 0
	case bson.TypeString:
		return parseFlag(v.StringValue())
	default:
		return false
	}
}

// rawTickets keeps the whole numbers of an array and skips everything else
func rawTickets(v bson.RawValue) models.Tickets {
	tickets := models.Tickets{}
	if v.Type != bson.TypeArray {
		return tickets
	}
	elems, err := v.Array().Values()
	if err != nil {
		return tickets
	}
	for _, e := range elems {
		switch e.Type {
		case bson.TypeInt32:
			tickets = append(tickets, int(e.Int32()))
		case bson.TypeInt64:
			tickets = append(tickets, int(e.Int64()))
		case bson.TypeDouble:
			if f := e.Double(); f == math.Trunc(f) && !math.IsInf(f, 0) {
				tickets = append(tickets, int(f))
			}
		}
	}
	return tickets
}

// rawPrizes drops prizes that do not decode
func rawPrizes(v bson.RawValue) []models.Prize {
	if v.Type != bson.TypeArray {
		return nil
	}
	elems, err := v.Array().Values()
	if err != nil {
		return nil
	}
	var prizes []models.Prize
	for _, e := range elems {
		var p models.Prize
		if e.Type != bson.TypeEmbeddedDocument || e.Unmarshal(&p) != nil {
			continue
		}
		prizes = append(prizes, p)
	}
	return prizes
}
