package services

import "errors"

// Failure taxonomy for the giveaway engine. Handlers map these to HTTP
// statuses with errors.Is; nothing here is fatal to the process.
var (
	ErrGiveawayNotFound            = errors.New("giveaway not found")
	ErrGiveawayNotAcceptingEntries = errors.New("giveaway is not accepting entries")
	ErrUserNotFound                = errors.New("user not found")
	ErrUserBanned                  = errors.New("user is banned from giveaways")
	ErrInvalidSlot                 = errors.New("invalid slot for this giveaway")
	ErrInvalidPickNumber           = errors.New("pick number must be a 3-digit value 000-999")
	ErrInsufficientFunds           = errors.New("insufficient credits or free entries")
	ErrNumberTaken                 = errors.New("number already taken in this slot")
	ErrNoNumbersAvailable          = errors.New("no numbers available in this giveaway")
	ErrDrawAlreadyRecorded         = errors.New("draw result already recorded")
	ErrDrawNotYetEligible          = errors.New("giveaway is not closed for entries yet")
	ErrInvalidCredentials          = errors.New("invalid credentials")
)
