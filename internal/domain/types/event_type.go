package types

type LedgerEvent string

func (s LedgerEvent) String() string {
	return string(s)
}

const (
	EventTokensMinted      LedgerEvent = "MINTED"
	EventTokensTransferred LedgerEvent = "TRANSFERRED"
)
