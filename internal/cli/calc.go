package cli

var calcOpts = &batchOptions{}

var calcCmd = newBatchCommand("calc <smiles-file>", "Generate coordinates and run the configured workflow for every molecule", calcOpts)

var coordsOpts = &batchOptions{coordsOnly: true}

var coordsCmd = newBatchCommand("coords <smiles-file>", "Only generate 3D coordinates for every molecule", coordsOpts)
