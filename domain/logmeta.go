package domain

type LogMeta struct {
	BlockNumber     BlockNumber
	TxHash          TxHash
	TxIndex         uint
	LogIndex        uint
	ContractAddress Address
}
