package types

const TokenTypeAccess = "access"
