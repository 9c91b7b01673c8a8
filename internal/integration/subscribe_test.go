//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GOVSEteam/go-newsletter-delivery/internal/domain"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/store"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/subscribe"
)

type recordingMailer struct {
	confirmations      []string
	alreadySubscribed  []string
	confirmationTokens []string
}

func (m *recordingMailer) SendConfirmation(ctx context.Context, email, name, confirmationLink string) error {
	m.confirmations = append(m.confirmations, email)
	m.confirmationTokens = append(m.confirmationTokens, confirmationLink)
	return nil
}

func (m *recordingMailer) SendAlreadySubscribed(ctx context.Context, email, name string) error {
	m.alreadySubscribed = append(m.alreadySubscribed, email)
	return nil
}

func fixedTokenGenerator(tokens ...string) subscribe.TokenGenerator {
	i := 0
	return func() (string, error) {
		tok := tokens[i]
		i++
		return tok, nil
	}
}

func newSubscribeCommand(t *testing.T, mailer *recordingMailer, gen subscribe.TokenGenerator) *subscribe.Command {
	t.Helper()
	repo := store.NewSubscriptionStore(testPool)
	return subscribe.NewCommand(repo, mailer, gen, "https://newsletter.example.test")
}

func TestSubscribe_NewSubscriber_CreatesPendingRowAndSendsConfirmation(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()

	before := time.Now().UTC()
	token, err := domain.NewSubscriptionToken()
	require.NoError(t, err)
	mailer := &recordingMailer{}
	cmd := newSubscribeCommand(t, mailer, fixedTokenGenerator(token.String()))

	err = cmd.Subscribe(ctx, "ursula@example.com", "Ursula Le Guin")
	require.NoError(t, err)

	require.Len(t, mailer.confirmations, 1)
	require.Equal(t, "ursula@example.com", mailer.confirmations[0])
	require.Contains(t, mailer.confirmationTokens[0], token.String())

	repo := store.NewSubscriptionStore(testPool)
	sub, err := repo.GetByEmail(ctx, "ursula@example.com")
	require.NoError(t, err)
	require.Equal(t, store.SubscriberStatusPendingConfirmation, sub.Status)
	require.False(t, sub.SubscribedAt.Before(before), "subscribed_at must be set by the subscribe action, not left at its zero value")

	resolved, err := repo.GetBySubscriptionToken(ctx, token.String())
	require.NoError(t, err)
	require.Equal(t, sub.ID, resolved.ID)
}

func TestSubscribe_ExistingPendingSubscriber_IssuesNewToken(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()

	firstToken, err := domain.NewSubscriptionToken()
	require.NoError(t, err)
	mailer := &recordingMailer{}
	cmd := newSubscribeCommand(t, mailer, fixedTokenGenerator(firstToken.String()))
	require.NoError(t, cmd.Subscribe(ctx, "ursula@example.com", "Ursula Le Guin"))

	secondToken, err := domain.NewSubscriptionToken()
	require.NoError(t, err)
	cmd = newSubscribeCommand(t, mailer, fixedTokenGenerator(secondToken.String()))
	require.NoError(t, cmd.Subscribe(ctx, "ursula@example.com", "Ursula Le Guin"))

	require.Len(t, mailer.confirmations, 2)

	repo := store.NewSubscriptionStore(testPool)
	byFirst, err := repo.GetBySubscriptionToken(ctx, firstToken.String())
	require.NoError(t, err)
	bySecond, err := repo.GetBySubscriptionToken(ctx, secondToken.String())
	require.NoError(t, err)
	require.Equal(t, byFirst.ID, bySecond.ID, "both tokens must resolve to the same subscriber row")
}

func TestSubscribe_AlreadyConfirmedSubscriber_SendsCourtesyEmailWithoutNewToken(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()

	token, err := domain.NewSubscriptionToken()
	require.NoError(t, err)
	mailer := &recordingMailer{}
	cmd := newSubscribeCommand(t, mailer, fixedTokenGenerator(token.String()))
	require.NoError(t, cmd.Subscribe(ctx, "ursula@example.com", "Ursula Le Guin"))
	require.NoError(t, cmd.Confirm(ctx, token.String()))

	err = cmd.Subscribe(ctx, "ursula@example.com", "Ursula Le Guin")
	require.NoError(t, err)

	require.Len(t, mailer.confirmations, 1)
	require.Len(t, mailer.alreadySubscribed, 1)
	require.Equal(t, "ursula@example.com", mailer.alreadySubscribed[0])
}

func TestConfirm_PendingToken_TransitionsToConfirmedIdempotently(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()

	token, err := domain.NewSubscriptionToken()
	require.NoError(t, err)
	mailer := &recordingMailer{}
	cmd := newSubscribeCommand(t, mailer, fixedTokenGenerator(token.String()))
	require.NoError(t, cmd.Subscribe(ctx, "ursula@example.com", "Ursula Le Guin"))

	require.NoError(t, cmd.Confirm(ctx, token.String()))

	repo := store.NewSubscriptionStore(testPool)
	sub, err := repo.GetByEmail(ctx, "ursula@example.com")
	require.NoError(t, err)
	require.Equal(t, store.SubscriberStatusConfirmed, sub.Status)

	// Confirming again with the same token is a no-op, not an error.
	require.NoError(t, cmd.Confirm(ctx, token.String()))
}

func TestConfirm_UnknownToken_ReturnsBadRequest(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()

	mailer := &recordingMailer{}
	cmd := newSubscribeCommand(t, mailer, fixedTokenGenerator())

	unknown, err := domain.NewSubscriptionToken()
	require.NoError(t, err)

	err = cmd.Confirm(ctx, unknown.String())
	require.Error(t, err)
}
