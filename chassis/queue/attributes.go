package queue

// Queue attribute names known to the service.
const (
	AttrAll                                   = "All"
	AttrPolicy                                = "Policy"
	AttrVisibilityTimeout                     = "VisibilityTimeout"
	AttrMaximumMessageSize                    = "MaximumMessageSize"
	AttrMessageRetentionPeriod                = "MessageRetentionPeriod"
	AttrApproximateNumberOfMessages           = "ApproximateNumberOfMessages"
	AttrApproximateNumberOfMessagesNotVisible = "ApproximateNumberOfMessagesNotVisible"
	AttrApproximateNumberOfMessagesDelayed    = "ApproximateNumberOfMessagesDelayed"
	AttrCreatedTimestamp                      = "CreatedTimestamp"
	AttrLastModifiedTimestamp                 = "LastModifiedTimestamp"
	AttrQueueArn                              = "QueueArn"
	AttrDelaySeconds                          = "DelaySeconds"
	AttrReceiveMessageWaitTimeSeconds         = "ReceiveMessageWaitTimeSeconds"
	AttrRedrivePolicy                         = "RedrivePolicy"
	AttrRedriveAllowPolicy                    = "RedriveAllowPolicy"
	AttrFifoQueue                             = "FifoQueue"
	AttrContentBasedDeduplication             = "ContentBasedDeduplication"
	AttrDeduplicationScope                    = "DeduplicationScope"
	AttrFifoThroughputLimit                   = "FifoThroughputLimit"
	AttrKmsMasterKeyID                        = "KmsMasterKeyId"
	AttrKmsDataKeyReusePeriodSeconds          = "KmsDataKeyReusePeriodSeconds"
	AttrSqsManagedSseEnabled                  = "SqsManagedSseEnabled"
)

// attribute name -> writable
var attributeNames = map[string]bool{
	AttrAll:                                   false,
	AttrPolicy:                                true,
	AttrVisibilityTimeout:                     true,
	AttrMaximumMessageSize:                    true,
	AttrMessageRetentionPeriod:                true,
	AttrApproximateNumberOfMessages:           false,
	AttrApproximateNumberOfMessagesNotVisible: false,
	AttrApproximateNumberOfMessagesDelayed:    false,
	AttrCreatedTimestamp:                      false,
	AttrLastModifiedTimestamp:                 false,
	AttrQueueArn:                              false,
	AttrDelaySeconds:                          true,
	AttrReceiveMessageWaitTimeSeconds:         true,
	AttrRedrivePolicy:                         true,
	AttrRedriveAllowPolicy:                    true,
	AttrFifoQueue:                             false, // only on create
	AttrContentBasedDeduplication:             true,
	AttrDeduplicationScope:                    true,
	AttrFifoThroughputLimit:                   true,
	AttrKmsMasterKeyID:                        true,
	AttrKmsDataKeyReusePeriodSeconds:          true,
	AttrSqsManagedSseEnabled:                  true,
}

// ValidAttribute reports whether name is a known queue attribute name.
// Names are case-sensitive.
func ValidAttribute(name string) bool {
	_, ok := attributeNames[name]
	return ok
}

// WritableAttribute reports whether name can be changed with SetAttributes.
func WritableAttribute(name string) bool {
	return attributeNames[name]
}
