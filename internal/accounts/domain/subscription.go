package domain

// Subscription is an opaque plan tag.
type Subscription string

const (
	SubscriptionStarter  Subscription = "starter"
	SubscriptionPro      Subscription = "pro"
	SubscriptionBusiness Subscription = "business"
)

// DefaultSubscription is assigned at registration when none is given.
const DefaultSubscription = SubscriptionStarter

// Subscriptions lists every known plan.
var Subscriptions = []Subscription{SubscriptionStarter, SubscriptionPro, SubscriptionBusiness}

// ParseSubscription maps s onto a known plan. An empty string yields the default.
func ParseSubscription(s string) (Subscription, bool) {
	if s == "" {
		return DefaultSubscription, true
	}
	for _, sub := range Subscriptions {
		if string(sub) == s {
			return sub, true
		}
	}
	return "", false
}
