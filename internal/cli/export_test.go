package cli

var PreviousPeriod = previousPeriod
