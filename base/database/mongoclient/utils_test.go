package mongoclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/metawood/goapi/domain"
	"github.com/metawood/goapi/domain/listing"
)

func TestMakeBsonM(t *testing.T) {
	price := domain.Amount("150")
	status := listing.StatusClosed

	updater, err := MakeBsonM(&listing.PatchableListing{
		Price:  &price,
		Status: &status,
	})

	assert.NoError(t, err)
	assert.Equal(
		t,
		bson.M{
			"price":  price,
			"status": status,
		},
		updater,
	)
}

func TestMakeBsonMSkipsUnsetFields(t *testing.T) {
	status := listing.StatusOpen

	updater, err := MakeBsonM(&listing.PatchableListing{Status: &status})

	assert.NoError(t, err)
	assert.Equal(t, bson.M{"status": status}, updater)
}
