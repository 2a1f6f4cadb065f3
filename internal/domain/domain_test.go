package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(0, 0))
	assert.True(t, ValidCoordinates(90, 180))
	assert.True(t, ValidCoordinates(-90, -180))
	assert.False(t, ValidCoordinates(90.01, 0))
	assert.False(t, ValidCoordinates(-90.01, 0))
	assert.False(t, ValidCoordinates(0, 180.01))
	assert.False(t, ValidCoordinates(0, -180.01))
}

func TestUser_ToPublic_HidesEmail(t *testing.T) {
	u := &User{ID: uuid.New(), Name: "Asha", Email: "asha@example.com", Role: RoleUser}

	data, err := json.Marshal(u.ToPublic())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "asha@example.com")
	assert.Contains(t, string(data), "Asha")
}

func TestUser_CanModerate(t *testing.T) {
	assert.False(t, (&User{Role: RoleUser}).CanModerate())
	assert.True(t, (&User{Role: RoleAdmin}).CanModerate())
	assert.True(t, (&User{Role: RoleNGO}).CanModerate())
}

func TestAwarenessCategory_Valid(t *testing.T) {
	for _, c := range []AwarenessCategory{
		CategorySelfDefense, CategoryLegalRights, CategoryHelplines,
		CategorySafetyTips, CategoryStories,
	} {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, AwarenessCategory("gossip").Valid())
	assert.False(t, AwarenessCategory("").Valid())
}

func TestAllowedEmojis_ClosedSet(t *testing.T) {
	assert.True(t, AllowedEmojis["❤️"])
	assert.True(t, AllowedEmojis["💪"])
	assert.False(t, AllowedEmojis["👍"])
	assert.False(t, AllowedEmojis[""])
}

func TestMentorshipTopic_Valid(t *testing.T) {
	assert.True(t, TopicEmotionalSupport.Valid())
	assert.True(t, TopicLegalAid.Valid())
	assert.True(t, TopicCareerGuidance.Valid())
	assert.False(t, MentorshipTopic("astrology").Valid())
}

func TestMentorRoleForTopic(t *testing.T) {
	assert.Equal(t, MentorRoleLegal, MentorRoleForTopic(TopicLegalAid))
	assert.Equal(t, MentorRoleCareer, MentorRoleForTopic(TopicCareerGuidance))
	assert.Equal(t, MentorRoleCounselor, MentorRoleForTopic(TopicEmotionalSupport))
}
